// Package lakehouse writes tables to their long-term destinations.
//
// Every Writer applies its schema before anything leaves the process, so a frame missing
// a schema column never reaches storage. Two destinations are provided:
//
//   - BigQueryWriter loads the table as a CSV load job (WriteAppend or WriteTruncate).
//   - ObjectWriter stores CSV part files (part-<uuid>.csv) under a table prefix in the
//     object store. Overwrite removes the existing parts first. ObjectWriter can also read
//     the parts back, which is how the commands fetch a historic snapshot.
package lakehouse
