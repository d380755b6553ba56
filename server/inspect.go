package server

import (
	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/lexer"
	"github.com/n9te9/graphql-parser/parser"
)

// operationInfo summarizes a request document for logs, metrics and spans.
type operationInfo struct {
	Type       string
	RootFields []string
}

const unknownOperation = "unknown"

// inspectQuery reads the operation type and root field names of the operation the engine will
// execute: the one named operationName, or the first when operationName is empty. Documents that
// do not parse, or that lack the named operation, are reported as unknown; the engine produces
// the actual errors.
func inspectQuery(query, operationName string) operationInfo {
	p := parser.New(lexer.New(query))
	doc := p.ParseDocument()
	if len(p.Errors()) > 0 || doc == nil {
		return operationInfo{Type: unknownOperation}
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.String() != operationName) {
			continue
		}

		info := operationInfo{Type: string(op.Operation)}
		if info.Type == "" {
			info.Type = string(ast.Query)
		}

		for _, sel := range op.SelectionSet {
			f, ok := sel.(*ast.Field)
			if !ok || f.Name == nil {
				continue
			}

			name := f.Name.String()
			if name == "__typename" {
				continue
			}
			info.RootFields = append(info.RootFields, name)
		}

		return info
	}

	return operationInfo{Type: unknownOperation}
}
