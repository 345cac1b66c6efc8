/*
Package template fills ${name} placeholders in prompt and instruction text.

	text, err := template.NewExpander().Expand("Reply in ${language}.", map[string]any{"language": "Spanish"})
	// text: "Reply in Spanish."

Names are letters, digits and underscores, not starting with a digit.
A bare dollar sign is left alone, so prices like "$5" survive expansion.

By default a placeholder without a value is kept as-is. An Expander built
with WithMissingAction(MissingError) reports every unresolved name in an
UndefinedVariableError instead. Placeholders lists the names a text uses,
so a table of templates can be checked at startup.
*/
package template
