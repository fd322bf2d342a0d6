package analyze

// codeKeywords are tokens that indicate code or development activity.
var codeKeywords = map[string]struct{}{
	"function": {}, "def": {}, "class": {}, "import": {}, "from": {},
	"return": {}, "if": {}, "else": {}, "for": {}, "while": {},
	"try": {}, "except": {}, "catch": {}, "throw": {}, "async": {},
	"await": {}, "const": {}, "let": {}, "var": {}, "public": {},
	"private": {}, "static": {}, "void": {}, "int": {}, "string": {},
	"bool": {}, "true": {}, "false": {}, "null": {}, "none": {},
	"self": {}, "this": {}, "error": {}, "warning": {}, "debug": {},
	"info": {}, "log": {}, "test": {}, "spec": {}, "describe": {},
}

// stopWords are excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"to": {}, "of": {}, "in": {}, "for": {}, "on": {}, "with": {},
	"at": {}, "by": {}, "from": {}, "as": {}, "or": {}, "and": {},
	"but": {}, "not": {}, "no": {}, "so": {}, "if": {}, "it": {},
	"its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"then": {}, "than": {}, "when": {}, "where": {},
}
