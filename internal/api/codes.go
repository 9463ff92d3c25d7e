package api

// Code is one entry of the numbered response-code table the client parses.
// Only CodeOK should ever accompany an HTTP 200.
type Code struct {
	Code int    `json:"code"` // Stable numeric code
	Msg  string `json:"msg"`  // Human-readable message
}

// The response-code table. The numbering is part of the client contract and
// must not be reordered. OAuthError is unused server-side but kept so the
// table stays aligned with what clients already parse.
var (
	CodeOK                 = Code{0, "OK"}
	CodeUnknownCommand     = Code{1, "Unknown command."}
	CodeMissingData        = Code{2, "Missing Data."}
	CodeBadAPICommand      = Code{3, "Invalid API command."}
	CodeAlreadyLoggedIn    = Code{4, "User is already logged in."}
	CodeRedirectToLogin    = Code{5, "Redirect user to login."}
	CodeDatabaseError      = Code{6, "Database error."}
	CodeUserDoesNotExist   = Code{7, "User does not exist."}
	CodeInvalidToken       = Code{8, "User is not logged in."}
	CodeBadSignIn          = Code{9, "Invalid sign-in credentials."}
	CodeTokenError         = Code{10, "Error generating login token."}
	CodeSuccessfulLogIn    = Code{11, "Successfully logged in."}
	CodeInvalidFormData    = Code{12, "Invalid form data."}
	CodeItemExists         = Code{13, "Item exists in database."}
	CodeAccountCreated     = Code{14, "Account successfully created."}
	CodeOAuthError         = Code{15, "Error contacting OAuth server."}
	CodeBadMethodGET       = Code{16, "Incorrect method. Must be GET!"}
	CodeBadMethodPOST      = Code{17, "Incorrect method. Must be POST!"}
	CodeBudgetDoesNotExist = Code{18, "Budget name does not exist."}
)
