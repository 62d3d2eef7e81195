package constants

// FormTypes lists the disclosure form layouts a recognition model exists for.
// The statute numbering ("様式" 6-5 etc.) is what operators pass on the CLI.
var FormTypes = []string{"6-5", "6-2-5", "7-5", "7-3-5"}

// ModelIDEnvVars maps a form type to the environment variable carrying its
// recognition model ID. A form type whose variable is empty is unavailable.
var ModelIDEnvVars = map[string]string{
	"6-5":   "MODEL_ID_FORM_6_5",
	"6-2-5": "MODEL_ID_FORM_6_2_5",
	"7-5":   "MODEL_ID_FORM_7_5",
	"7-3-5": "MODEL_ID_FORM_7_3_5",
}
