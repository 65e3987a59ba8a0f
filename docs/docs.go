// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "PropDesk Back Office API",
    "description": "Tickets, vendors, property units and calls for the property management dashboard",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Health check"}},
    "/api/analytics/summary": {"get": {"tags": ["analytics"], "summary": "Dashboard summary"}},
    "/api/tickets": {
      "get": {"tags": ["tickets"], "summary": "List tickets"},
      "post": {"tags": ["tickets"], "summary": "Create ticket"}
    },
    "/api/tickets/export": {"get": {"tags": ["tickets"], "summary": "Export filtered tickets as CSV"}},
    "/api/tickets/import": {"post": {"tags": ["tickets"], "summary": "Import tickets from CSV"}},
    "/api/tickets/{id}": {"get": {"tags": ["tickets"], "summary": "Ticket details with linked calls"}},
    "/api/tickets/{id}/vendors": {"get": {"tags": ["tickets"], "summary": "Suggest a vendor for a ticket"}},
    "/api/tickets/{id}/status": {"patch": {"tags": ["tickets"], "summary": "Update ticket status"}},
    "/api/vendors": {"get": {"tags": ["vendors"], "summary": "List vendors"}},
    "/api/vendors/{id}/active": {"patch": {"tags": ["vendors"], "summary": "Activate or deactivate a vendor"}},
    "/api/properties": {"get": {"tags": ["properties"], "summary": "List property units"}},
    "/api/calls": {"get": {"tags": ["calls"], "summary": "List calls"}},
    "/api/calls/{id}": {"get": {"tags": ["calls"], "summary": "Call details with transcript segments"}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
