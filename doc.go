package statadta

/*

Package statadta reads and writes Stata .dta files, format releases 117
and 118. Read decodes a file into a Table of typed Columns (integers,
floats, fixed and variable-length text, dates, datetimes, and categorical
columns backed by a value-label dictionary). Write encodes a Table back
to a release-118 file, choosing a storage type and display format for
each column and reporting any column it cannot represent.

A CSVReader is also provided for building a Table from a delimited text
file, for use by the dtacat command's CSV-to-dta conversion path.

*/
