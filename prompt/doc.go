// Package prompt provides prompt template loading for agent runs.
//
// Templates are .txt files rendered with text/template. The loader
// searches the project's .autoflow/prompts/ and prompts/ directories
// before falling back to the embedded defaults, so any shipped prompt
// can be overridden per project.
//
// Example usage:
//
//	loader := prompt.NewLoader(".")
//	text, err := loader.LoadWithVars("run-summary", map[string]any{
//	    "goal":   "Fix the login page",
//	    "status": "completed",
//	})
//
// The Builder assembles prompts programmatically:
//
//	p := prompt.NewBuilder().
//	    AddSection("Goal", goal).
//	    AddList("Constraints", constraints).
//	    Build()
package prompt
