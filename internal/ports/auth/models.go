package auth

// Claims es lo que el middleware deja en el contexto tras verificar el token.
type Claims struct {
	UserID   string
	Email    string
	UserType string
}
