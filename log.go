package statadta

import "github.com/sirupsen/logrus"

// log is the package-wide structured logger used for non-fatal read-side
// warnings. The write-side verbose report goes to stdout directly (see
// Write in writer.go), since that output is meant to be read by a human
// or piped, not structured. Callers embedding this package can redirect
// log with logrus.SetOutput / logrus.SetFormatter on the standard logger.
var log = logrus.StandardLogger()
