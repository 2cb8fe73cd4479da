// Package dataprocessing turns roster source files into a sealed store and
// computes the per-student aggregates the reports are built from.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: reads delimited (or .xlsx) identity, marks and weights sources
// 2. Loader: validates the sources and populates a store.Store in one pass
// 3. Analytics: averages, totals, progress and letter grades
//
// # Usage
//
//	parser := dataprocessing.NewParser(dataprocessing.ParserConfig{Delimiter: ';'}, logger)
//	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{Parser: parser}, logger)
//	res, err := loader.Load(ctx, dataprocessing.Sources{
//	    Identity: "data/students.csv",
//	    Marks:    "data/marks.csv",
//	    Weights:  "data/weights.csv",
//	})
//	if err != nil {
//	    return err // schema and mark format errors are fatal
//	}
//	avg := dataprocessing.WeightedAverage(student, res.Weights)
//
// # Data Flow
//
//	Sources → Parser → records → Loader → store.Store (sealed) → Analytics → reports
//
// # Error Handling
//
// A missing required column is a SchemaError and a bad mark token is a
// MarkFormatError. Both abort the load and no store is returned. The
// weights source is optional: when it is missing or unreadable every subject
// keeps weight 1.0 and Result.WeightsErr records why.
//
// Aggregates that cannot be computed are domain.NoData, never zero.
package dataprocessing
