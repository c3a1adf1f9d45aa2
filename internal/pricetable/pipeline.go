package pricetable

import "fmt"

// Preprocess runs the complete cleaning pipeline over a raw table and
// returns the analysis-ready series together with the warnings collected
// along the way. The returned warning list is empty for a clean run.
func Preprocess(raw Table) (Table, []Warning, error) {
	table := raw.Clone()

	if err := Validate(&table); err != nil {
		return Table{}, nil, err
	}

	warnings := []Warning{}

	table, w := RepairMissing(table)
	warnings = append(warnings, w...)

	table, w = RepairConsistency(table)
	warnings = append(warnings, w...)

	table = DeriveReturns(table)

	// Re-validation should be unreachable for correct inputs, but a repair
	// stage dropping too many rows surfaces here with the stage-1 error kind.
	if err := Validate(&table); err != nil {
		return Table{}, nil, fmt.Errorf("post-processing validation: %w", err)
	}

	return table, warnings, nil
}
