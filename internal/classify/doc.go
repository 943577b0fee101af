// Package classify maps file extensions to the categories configured under
// file_types. The category drives everything downstream: which naming pattern
// applies, which destinations are candidates, and which metadata extractors
// run.
package classify
