// Package graph binds the product catalog to its GraphQL schema.
package graph

import (
	"context"
	_ "embed"
	"strconv"

	"github.com/graph-gophers/graphql-go"
	"github.com/n9te9/product-catalog/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.graphql
var SDL string

const tracerName = "github.com/n9te9/product-catalog/graph"

// Resolver is the root query resolver. It holds the catalog every query reads from.
type Resolver struct {
	catalog *catalog.Catalog
	tracer  trace.Tracer
}

func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{
		catalog: c,
		tracer:  otel.Tracer(tracerName),
	}
}

type SchemaOption struct {
	MaxParallelism int
}

// NewSchema parses SDL and binds it to a Resolver over c.
func NewSchema(c *catalog.Catalog, opt SchemaOption) (*graphql.Schema, error) {
	var opts []graphql.SchemaOpt
	if opt.MaxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(opt.MaxParallelism))
	}

	return graphql.ParseSchema(SDL, NewResolver(c), opts...)
}

func (r *Resolver) Products(ctx context.Context) *[]*productResolver {
	_, span := r.tracer.Start(ctx, "Query.products")
	defer span.End()

	return r.wrap(span, r.catalog.All())
}

func (r *Resolver) ProductsByTitle(ctx context.Context, args struct{ Title string }) *[]*productResolver {
	_, span := r.tracer.Start(ctx, "Query.productsByTitle", trace.WithAttributes(
		attribute.String("catalog.title", args.Title),
	))
	defer span.End()

	return r.wrap(span, r.catalog.ByTitle(args.Title))
}

func (r *Resolver) ExpensiveProducts(ctx context.Context) *[]*productResolver {
	_, span := r.tracer.Start(ctx, "Query.expensiveProducts", trace.WithAttributes(
		attribute.Float64("catalog.threshold", catalog.ExpensiveThreshold),
	))
	defer span.End()

	return r.wrap(span, r.catalog.Expensive())
}

// Product returns null when the id is absent, is not an integer, or matches nothing.
func (r *Resolver) Product(ctx context.Context, args struct{ ID *graphql.ID }) *productResolver {
	_, span := r.tracer.Start(ctx, "Query.product")
	defer span.End()

	if args.ID == nil {
		return nil
	}
	span.SetAttributes(attribute.String("catalog.id", string(*args.ID)))

	id, err := strconv.Atoi(string(*args.ID))
	if err != nil {
		return nil
	}

	p, ok := r.catalog.ByID(id)
	if !ok {
		return nil
	}

	return &productResolver{p: p}
}

func (r *Resolver) wrap(span trace.Span, products []catalog.Product) *[]*productResolver {
	span.SetAttributes(attribute.Int("catalog.results", len(products)))

	res := make([]*productResolver, 0, len(products))
	for _, p := range products {
		res = append(res, &productResolver{p: p})
	}

	return &res
}
