package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// TokenQuery carries an access token in the query string, for clients such as
// browsers opening a WebSocket that cannot set an Authorization header.
type TokenQuery struct {
	Token string `form:"token" binding:"required"`
}
