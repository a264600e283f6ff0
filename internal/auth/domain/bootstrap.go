package domain

type BootstrapData struct {
	Username     string
	Password     string
	Email        string
	Name         string
	ClientName   string
	RedirectURIs []string
	ClientScopes []string
}
