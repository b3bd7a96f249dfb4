// Package types defines the value-type algebra shared by the schema
// registry and the query inference engine.
//
// A Type is one of the primitive kinds (string, number, bool, datetime,
// duration, uuid, bytes, geometry, any), an array, an ordered object, a
// record link to another table, an optional wrapper, a union of
// alternatives, or Unknown:
//
//	types.NewArray(types.NewRecord("post"))   // array<record<post>>
//	types.NewOption(types.NewString())        // option<string>
//
// Unions appear only as inference results. Unknown marks a type the
// analyzer could not resolve and is always paired with a diagnostic.
package types
