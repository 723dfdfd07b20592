// Package properties reduces a catalog to connectivity-equivalence subsets
// plus the fixed operator vocabulary, for the GET /properties endpoint.
package properties

import (
	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/filterlang"
	"github.com/relsearch/search-service/internal/schemagraph"
)

// AttributeInfo describes one catalog attribute in the properties
// document: its fully-qualified name, its translated type, and the index
// of the connectivity subset its table belongs to.
type AttributeInfo struct {
	QualifiedName string           `json:"qualified_name"`
	Type          catalog.TypeKind `json:"type"`
	SubsetID      int              `json:"subset_id"`
}

// Properties is the output document: every attribute tagged with its
// subset, the subsets themselves as index sets, and the fixed operator
// vocabulary.
type Properties struct {
	Attributes       []AttributeInfo          `json:"attributes"`
	Subsets          [][]int                  `json:"subsets"`
	Operators        []filterlang.Operator    `json:"operators"`
	LogicalOperators []filterlang.LogicalOperator `json:"logical_operators"`
}

// TypeTranslator resolves a backend-native type string to the closed
// TypeKind set — the same signature storage.Storage.TranslateType has,
// decoupled here so this package doesn't need to import storage.
type TypeTranslator func(native string) (catalog.TypeKind, error)

// Build partitions schema's tables into connectivity-equivalence subsets
// using graph and emits an AttributeInfo for every attribute, in catalog
// order, via translate.
func Build(schema catalog.DbSchema, graph *schemagraph.Graph, translate TypeTranslator) (Properties, error) {
	props := Properties{
		Operators:        filterlang.Operators,
		LogicalOperators: filterlang.LogicalOperators,
	}

	representatives := make([]string, 0) // subset index -> representative table
	subsetOf := make(map[string]int, len(schema.Tables))

	for _, table := range schema.Tables {
		full := table.QualifiedName()

		subsetID := -1
		for candidate, rep := range representatives {
			tables, _, err := graph.PathTo(full, rep)
			if err != nil {
				return Properties{}, apperr.WrapQueryBuildError(err)
			}
			if len(tables) > 0 {
				subsetID = candidate
				break
			}
		}
		if subsetID == -1 {
			subsetID = len(representatives)
			representatives = append(representatives, full)
			props.Subsets = append(props.Subsets, nil)
		}
		subsetOf[full] = subsetID

		for _, attr := range table.Attributes {
			kind, err := translate(attr.NativeType)
			if err != nil {
				return Properties{}, err
			}
			idx := len(props.Attributes)
			props.Attributes = append(props.Attributes, AttributeInfo{
				QualifiedName: full + "." + attr.Name,
				Type:          kind,
				SubsetID:      subsetID,
			})
			props.Subsets[subsetID] = append(props.Subsets[subsetID], idx)
		}
	}

	return props, nil
}
