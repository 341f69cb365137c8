package model

// Contributor is the normalized representation of a repository contributor.
type Contributor struct {
	Login         string
	Contributions int
	AvatarURL     string
	ProfileURL    string
}
