package graph

import (
	"strconv"

	"github.com/graph-gophers/graphql-go"
	"github.com/n9te9/product-catalog/catalog"
)

// productResolver exposes a catalog.Product with the nullable field types the schema declares.
type productResolver struct {
	p catalog.Product
}

func (r *productResolver) ID() *graphql.ID {
	id := graphql.ID(strconv.Itoa(r.p.ID))
	return &id
}

func (r *productResolver) Title() *string {
	return r.p.Title
}

func (r *productResolver) Type() *string {
	return r.p.Type
}

func (r *productResolver) Description() *string {
	return r.p.Description
}

func (r *productResolver) Filename() *string {
	return r.p.Filename
}

func (r *productResolver) Height() *int32 {
	return int32Ptr(r.p.Height)
}

func (r *productResolver) Width() *int32 {
	return int32Ptr(r.p.Width)
}

func (r *productResolver) Price() *float64 {
	return r.p.Price
}

func (r *productResolver) Rating() *int32 {
	return int32Ptr(r.p.Rating)
}

// int32Ptr narrows v. catalog.New rejects values outside the int32 range.
func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	i := int32(*v)
	return &i
}
