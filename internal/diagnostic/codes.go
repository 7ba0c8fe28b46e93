package diagnostic

// Code identifies the rule a diagnostic reports. Consumers may filter on it;
// the message wording is not part of the contract.
type Code string

// Checked errors
const (
	CodeInput            Code = "E1000" // malformed input tree
	CodeUnknownName      Code = "E1001"
	CodeUnknownType      Code = "E1002"
	CodeDuplicate        Code = "E1003"
	CodeRecursiveType    Code = "E1004"
	CodeTypeMismatch     Code = "E1005"
	CodeArity            Code = "E1006"
	CodeCurriedPatterns  Code = "E1007"
	CodeDuplicateBinder  Code = "E1008"
	CodeMeasure          Code = "E1009"
	CodeOperationAccess  Code = "E1010"
	CodeVisibility       Code = "E1011"
	CodeStaticContext    Code = "E1012"
	CodeSecondState      Code = "E1013"
	CodeUnresolved       Code = "E1014"
	CodeDialect          Code = "E1015"
	CodeQualifier        Code = "E1016"
	CodeOverload         Code = "E1017"
	CodeImport           Code = "E1018"
	CodeStateAccess      Code = "E1019"
	CodePattern          Code = "E1020"
	CodeField            Code = "E1021"
	CodeReturn           Code = "E1022"
	CodeInheritance      Code = "E1023"
	CodeClause           Code = "E1024"
	CodeCasesUnreachable Code = "E1025"
)

// Warnings
const (
	CodeUnused       Code = "W2001"
	CodeNoMeasure    Code = "W2002"
	CodeNoPre        Code = "W2003"
	CodeNaming       Code = "W2004"
	CodeShadow       Code = "W2005"
	CodeTrivialGuard Code = "W2006"
)
