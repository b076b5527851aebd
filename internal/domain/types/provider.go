// Package types define constantes de dominio compartidas entre paquetes.
package types

import "strings"

// Provider identifica el origen de una IdentityAccount.
type Provider string

const (
	ProviderEmail    Provider = "EMAIL"
	ProviderGoogle   Provider = "GOOGLE"
	ProviderGitHub   Provider = "GITHUB"
	ProviderFacebook Provider = "FACEBOOK"
)

// ParseProvider normaliza el nombre (case-insensitive). Valores fuera del
// catálogo se aceptan tal cual: el store no restringe proveedores.
func ParseProvider(s string) Provider {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "EMAIL", "":
		return ProviderEmail
	case "GOOGLE":
		return ProviderGoogle
	case "GITHUB":
		return ProviderGitHub
	case "FACEBOOK":
		return ProviderFacebook
	}
	return Provider(s)
}

func (p Provider) String() string { return string(p) }
