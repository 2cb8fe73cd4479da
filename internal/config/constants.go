package config

// Application constants
const (
	AppName    = "rostercli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces environment variables, e.g. ROSTER_DATA_DIR
	EnvPrefix = "ROSTER"

	DefaultDataDir      = "data"
	DefaultIdentityFile = "students.csv"
	DefaultMarksFile    = "marks.csv"
	DefaultWeightsFile  = "weights.csv"
	DefaultExportFile   = "all_students.csv"
	DefaultWorkbookFile = "all_students.xlsx"
	DefaultDelimiter    = ";"

	UnknownStudentsCreate = "create"
	UnknownStudentsReject = "reject"

	// CollationBinary sorts names by byte order, case-sensitive
	CollationBinary = "binary"
)
