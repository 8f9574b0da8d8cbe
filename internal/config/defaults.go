package config

// Default values for configuration
const (
	// Log defaults
	DefaultLogPath   = "logs/app.log"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Database defaults
	DefaultDBPath = "database/thrive_test_db.db"

	// Output defaults
	DefaultOutputDir    = "output"
	DefaultCSVFile      = "consolidated_messages.csv"
	DefaultReportFile   = "data_quality_report.txt"
	DefaultRawOutputDir = "output_raw_tables"

	// Table defaults
	DefaultConsolidated = "consolidated_messages"
)

// DefaultRawTables are the externally owned source tables, in export order.
var DefaultRawTables = []string{"users", "conversation_start", "conversation_parts"}

// DefaultManagedTables are dropped before the schema script runs. The
// consolidated table comes last so the dimension tables go first.
var DefaultManagedTables = []string{"dim_users", "dim_conversation_parts", "consolidated_messages"}
