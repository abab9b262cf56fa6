package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	Profiles   []string
	Group      string
	Region     string
	Workers    int
	AllChecks  bool
	Check      string
	TopN       int
	Window     string
	MinMinutes int
	Alarms     []string
	Format     string
	Verbose    bool
}
