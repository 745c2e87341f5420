package errors

// Error codes for the contractc compiler
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Name resolution errors
// E0100-E0199: Inheritance errors
// E0200-E0299: Storage layout errors
// E0300-E0399: Call safety errors (account metadata)
// E0400-E0499: Encoding errors (selectors, mangled names)
// E0500-E0599: Annotation errors
// E0900-E0999: Syntax errors
// W0001-W0099: Warnings

const (
	// Name resolution errors (E0001-E0099)

	// E0001: identifier or type could not be resolved
	ErrorUndefinedName = "E0001"

	// E0002: function could not be resolved
	ErrorUndefinedFunction = "E0002"

	// E0003: expression type cannot be converted to the expected type
	ErrorTypeMismatch = "E0003"

	// E0004: no overload accepts the argument types
	ErrorNoMatchingOverload = "E0004"

	// E0005: more than one overload accepts the argument types
	ErrorAmbiguousCall = "E0005"

	// E0006: name declared twice in the same scope
	ErrorDuplicateDeclaration = "E0006"

	// E0007: two functions with an identical signature
	ErrorDuplicateSignature = "E0007"

	// E0008: wrong number of call arguments
	ErrorInvalidArguments = "E0008"

	// E0009: struct field or member does not exist
	ErrorFieldNotFound = "E0009"

	// E0010: operator not supported for the operand types
	ErrorInvalidOperation = "E0010"

	// E0011: assignment target is not assignable
	ErrorInvalidAssignment = "E0011"

	// E0012: invalid constructor declaration
	ErrorInvalidConstructor = "E0012"

	// E0013: body violates the declared mutability
	ErrorMutabilityViolation = "E0013"

	// E0014: type not allowed in this position
	ErrorInvalidType = "E0014"

	// E0015: qualified call through a contract that is not a base
	ErrorInvalidQualifiedCall = "E0015"

	// E0016: declaration not permitted in its context
	ErrorInvalidDeclaration = "E0016"

	// Inheritance errors (E0100-E0199)

	// E0100: base graph contains a cycle
	ErrorCyclicBase = "E0100"

	// E0101: base contract not permitted
	ErrorInvalidBase = "E0101"

	// E0102: overridden function is not virtual
	ErrorNotVirtual = "E0102"

	// E0103: override list omits a base that declares the function
	ErrorMissingOverride = "E0103"

	// E0104: override attribute or list is malformed
	ErrorInvalidOverride = "E0104"

	// E0105: function overrides another function in the same contract
	ErrorOverrideSameContract = "E0105"

	// E0106: override changes argument or return types
	ErrorOverrideSignature = "E0106"

	// E0107: override mutability is not compatible with the base
	ErrorIncompatibleMutability = "E0107"

	// E0108: override visibility is not compatible with the base
	ErrorIncompatibleVisibility = "E0108"

	// E0109: base constructor arguments supplied twice
	ErrorDuplicateBaseArgument = "E0109"

	// E0110: base constructor arguments never supplied
	ErrorMissingBaseArgument = "E0110"

	// E0111: concrete contract leaves a function without implementation
	ErrorMissingImplementation = "E0111"

	// E0112: inherited symbol clashes with a declaration
	ErrorInheritedClash = "E0112"

	// Storage layout errors (E0200-E0299)

	// E0200: declared space smaller than the computed minimum
	ErrorInsufficientSpace = "E0200"

	// E0201: minimum size exceeds the target maximum account size
	ErrorAccountTooLarge = "E0201"

	// E0202: two storage variables overlap (internal invariant)
	ErrorStorageOverlap = "E0202"

	// Call safety errors (E0300-E0399)

	// E0300: account list cannot be inferred for repeated calls
	ErrorAmbiguousAccounts = "E0300"

	// E0301: account declared under a reserved name
	ErrorReservedAccount = "E0301"

	// E0302: account name collides with an inferred account
	ErrorAccountCollision = "E0302"

	// E0303: override declares a different account set
	ErrorOverrideAccounts = "E0303"

	// E0304: call option not valid for this call or target
	ErrorInvalidCallOption = "E0304"

	// E0305: external call has no program id
	ErrorMissingProgramID = "E0305"

	// Encoding errors (E0400-E0499)

	// E0400: two functions share a selector
	ErrorSelectorCollision = "E0400"

	// E0401: mangled name collides with an existing declaration
	ErrorMangledCollision = "E0401"

	// E0402: explicit selector has the wrong length
	ErrorSelectorLength = "E0402"

	// E0403: override selector differs from the base selector
	ErrorSelectorMismatch = "E0403"

	// E0404: external name is not unique
	ErrorNonUniqueName = "E0404"

	// Annotation errors (E0500-E0599)

	// E0500: annotation not allowed in this context
	ErrorUnknownAnnotation = "E0500"

	// E0501: annotation on a declaration without body
	ErrorAnnotationNoBody = "E0501"

	// E0502: annotation given twice
	ErrorDuplicateAnnotation = "E0502"

	// E0503: annotation arguments are invalid
	ErrorInvalidAnnotation = "E0503"

	// E0900: source text could not be parsed
	ErrorSyntax = "E0900"

	// Warning codes

	// W0001: storage variable never read or written
	WarningUnusedStorage = "W0001"

	// W0002: declaration shadows a visible type
	WarningShadowedType = "W0002"

	// W0003: function could be declared with stricter mutability
	WarningMutability = "W0003"

	// W0004: account space smaller than configured buffer
	WarningSpace = "W0004"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndefinedName:
		return "Identifier or type is used but not declared"
	case ErrorUndefinedFunction:
		return "Function is called but not declared"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorNoMatchingOverload:
		return "No overloaded function accepts the argument types"
	case ErrorAmbiguousCall:
		return "Call can be resolved to more than one overloaded function"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorDuplicateSignature:
		return "Function with the same signature already declared"
	case ErrorInvalidArguments:
		return "Function call has invalid arguments"
	case ErrorFieldNotFound:
		return "Struct field or member does not exist"
	case ErrorInvalidOperation:
		return "Operation not supported for these types"
	case ErrorInvalidAssignment:
		return "Invalid assignment operation"
	case ErrorInvalidConstructor:
		return "Invalid constructor definition"
	case ErrorMutabilityViolation:
		return "Function body violates declared mutability"
	case ErrorInvalidType:
		return "Type not allowed here"
	case ErrorInvalidQualifiedCall:
		return "Qualified call through a contract that is not a base"
	case ErrorInvalidDeclaration:
		return "Declaration not permitted in this context"
	case ErrorCyclicBase:
		return "Inheritance graph contains a cycle"
	case ErrorInvalidBase:
		return "Base contract not permitted"
	case ErrorNotVirtual:
		return "Overridden function is not virtual"
	case ErrorMissingOverride:
		return "Override list does not name every overridden base"
	case ErrorInvalidOverride:
		return "Invalid override specification"
	case ErrorOverrideSameContract:
		return "Function overrides a function in the same contract"
	case ErrorOverrideSignature:
		return "Override changes argument or return types"
	case ErrorIncompatibleMutability:
		return "Override mutability not compatible with base"
	case ErrorIncompatibleVisibility:
		return "Override visibility not compatible with base"
	case ErrorDuplicateBaseArgument:
		return "Base constructor arguments supplied more than once"
	case ErrorMissingBaseArgument:
		return "Base constructor arguments missing"
	case ErrorMissingImplementation:
		return "Function declared without implementation"
	case ErrorInheritedClash:
		return "Inherited symbol clashes with a declaration"
	case ErrorInsufficientSpace:
		return "Declared account space smaller than required"
	case ErrorAccountTooLarge:
		return "Account data exceeds the maximum account size"
	case ErrorStorageOverlap:
		return "Storage variables overlap"
	case ErrorAmbiguousAccounts:
		return "Accounts cannot be collected automatically"
	case ErrorReservedAccount:
		return "Account name is reserved"
	case ErrorAccountCollision:
		return "Account name collision"
	case ErrorOverrideAccounts:
		return "Override account set differs from base"
	case ErrorInvalidCallOption:
		return "Call option not valid here"
	case ErrorMissingProgramID:
		return "External call has no program id"
	case ErrorSelectorCollision:
		return "Two functions share a selector"
	case ErrorMangledCollision:
		return "Mangled name collides with another declaration"
	case ErrorSelectorLength:
		return "Selector has the wrong length"
	case ErrorSelectorMismatch:
		return "Override selector differs from base selector"
	case ErrorNonUniqueName:
		return "Function or constructor name not unique"
	case ErrorUnknownAnnotation:
		return "Annotation not allowed in this context"
	case ErrorAnnotationNoBody:
		return "Annotation not allowed on declaration without body"
	case ErrorDuplicateAnnotation:
		return "Annotation given more than once"
	case ErrorInvalidAnnotation:
		return "Annotation arguments invalid"
	case ErrorSyntax:
		return "Syntax error"
	case WarningUnusedStorage:
		return "Storage variable is never used"
	case WarningShadowedType:
		return "Declaration shadows a visible type"
	case WarningMutability:
		return "Function mutability could be more restrictive"
	case WarningSpace:
		return "Configured space smaller than required"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case IsWarning(code):
		return "Warning"
	case code >= "E0001" && code < "E0100":
		return "Name Resolution"
	case code >= "E0100" && code < "E0200":
		return "Inheritance"
	case code >= "E0200" && code < "E0300":
		return "Storage Layout"
	case code >= "E0300" && code < "E0400":
		return "Call Safety"
	case code >= "E0400" && code < "E0500":
		return "Encoding"
	case code >= "E0500" && code < "E0600":
		return "Annotation"
	case code >= "E0900" && code < "E1000":
		return "Syntax"
	default:
		return "Unknown"
	}
}
