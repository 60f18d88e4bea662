package model

import "strings"

// CompanyDetails holds the display name and the free form financials of a company
type CompanyDetails struct {
	Symbol     string                 `json:"symbol"`
	Name       string                 `json:"name"`
	Financials map[string]interface{} `json:"financials"`
}

// Lookup returns a financials value by key, ignoring case
func (c *CompanyDetails) Lookup(key string) (interface{}, bool) {
	if v, ok := c.Financials[key]; ok {
		return v, true
	}
	for k, v := range c.Financials {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
