package domain

import "fmt"

// EndpointProfile names one analytics service deployment.
type EndpointProfile struct {
	Name    string
	BaseURL string
}

func (p EndpointProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.BaseURL)
}
