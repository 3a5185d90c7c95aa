package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	LogLevel  string
	LogFormat string

	// evaluate and classify flags
	AudioFile  string
	Text       string
	SetName    string
	Index      int
	Profile    string
	Format     string
	Tips       bool
	ResultFile string
	SaveResult string

	// serve flags
	Addr string

	// sets flags
	ImportName string

	// speak flags
	Output            string
	TTSProvider       string
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:    "info",
		LogFormat:   "text",
		Index:       1,
		Format:      "lines",
		Addr:        ":8080",
		TTSProvider: "auto",
		OpenAIModel: "gpt-4o-mini-tts",
		OpenAIVoice: "alloy",
		OpenAISpeed: 0.9,
	}
}
