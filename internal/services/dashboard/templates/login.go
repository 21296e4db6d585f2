package templates

// LoginView provides data for the login form.
type LoginView struct {
	Username string
	// Error is shown above the form when the last attempt failed.
	Error string
}
