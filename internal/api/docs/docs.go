// Package docs holds the swagger document of the dashboard API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Service status and the ID of the loaded dataset",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "Service healthy",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/dataset": {
            "get": {
                "description": "Source, load ID, load time, columns, load statistics and validation report",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dataset"
                ],
                "summary": "Get dataset",
                "responses": {
                    "200": {
                        "description": "Dataset details",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/dataset/reload": {
            "post": {
                "description": "Load the configured source again and recompute every view. The current data is kept when loading fails.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dataset"
                ],
                "summary": "Reload dataset",
                "responses": {
                    "200": {
                        "description": "Dataset reloaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "Source unavailable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/filters": {
            "get": {
                "description": "Distinct years, regions and severities of the full dataset, each list starting with \"All\"",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboard"
                ],
                "summary": "Get filter options",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/analytics.FilterOptions"
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/dashboard": {
            "get": {
                "description": "Summary, cards and every view for the given criteria. The session filter is not changed.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboard"
                ],
                "summary": "Get dashboard",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Year or All",
                        "name": "year",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Region or All",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Accident severity or All",
                        "name": "severity",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/analytics.Dashboard"
                        }
                    },
                    "400": {
                        "description": "Invalid criteria",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/session": {
            "get": {
                "description": "Dashboard for the filter currently selected in the session",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "session"
                ],
                "summary": "Get session dashboard",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/analytics.Dashboard"
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/session/filter": {
            "put": {
                "description": "Select new criteria, recompute every view and push them to the presenters",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "session"
                ],
                "summary": "Set session filter",
                "parameters": [
                    {
                        "description": "Filter criteria; empty fields mean All",
                        "name": "criteria",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.FilterCriteria"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/analytics.Dashboard"
                        }
                    },
                    "400": {
                        "description": "Invalid criteria",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "500": {
                        "description": "Presenter failure",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/summary": {
            "get": {
                "description": "Totals and formatted cards for the given criteria",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboard"
                ],
                "summary": "Get summary",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Year or All",
                        "name": "year",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Region or All",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Accident severity or All",
                        "name": "severity",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Summary and cards",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Invalid criteria",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/views": {
            "get": {
                "description": "Keys of the views held by the registry, in creation order",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "views"
                ],
                "summary": "List views",
                "responses": {
                    "200": {
                        "description": "View keys",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/views/{key}": {
            "get": {
                "description": "Latest payload of one view for the session filter",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "views"
                ],
                "summary": "Get view",
                "parameters": [
                    {
                        "type": "string",
                        "description": "View key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/analytics.View"
                        }
                    },
                    "404": {
                        "description": "Unknown view",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/charts/{key}": {
            "get": {
                "description": "PNG rendering of one view for the given criteria",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "views"
                ],
                "summary": "Get chart image",
                "parameters": [
                    {
                        "type": "string",
                        "description": "View key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Year or All",
                        "name": "year",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Region or All",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Accident severity or All",
                        "name": "severity",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PNG image",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Invalid criteria",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Unknown view",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/exports": {
            "post": {
                "description": "Export the rows matching the criteria, or the computed dashboard, to a file",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "exports"
                ],
                "summary": "Create export",
                "parameters": [
                    {
                        "description": "Export options",
                        "name": "export",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.ExportRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/export.Result"
                        }
                    },
                    "400": {
                        "description": "Invalid request payload",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "No dataset loaded",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/download/{id}/{filename}": {
            "get": {
                "description": "Download a file written by an export",
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "exports"
                ],
                "summary": "Download file",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Export ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "File name",
                        "name": "filename",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Invalid URL format",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "File not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "model.FilterCriteria": {
            "type": "object",
            "properties": {
                "year": {
                    "type": "string"
                },
                "region": {
                    "type": "string"
                },
                "severity": {
                    "type": "string"
                }
            }
        },
        "model.GroupCount": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "model.Point": {
            "type": "object",
            "properties": {
                "x": {
                    "type": "number"
                },
                "y": {
                    "type": "number"
                }
            }
        },
        "model.CrossTabCell": {
            "type": "object",
            "properties": {
                "row": {
                    "type": "string"
                },
                "col": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "model.GeoCount": {
            "type": "object",
            "properties": {
                "country": {
                    "type": "string"
                },
                "lat": {
                    "type": "number"
                },
                "lng": {
                    "type": "number"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "analytics.FilterOptions": {
            "type": "object",
            "properties": {
                "years": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "regions": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "severities": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "analytics.Summary": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "fatalities": {
                    "type": "number"
                },
                "injuries": {
                    "type": "number"
                },
                "economicLoss": {
                    "type": "number"
                },
                "avgResponseTime": {
                    "type": "number"
                },
                "responseSamples": {
                    "type": "integer"
                }
            }
        },
        "analytics.Card": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                }
            }
        },
        "analytics.Samples": {
            "type": "object",
            "properties": {
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "values": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "type": "number"
                        }
                    }
                }
            }
        },
        "analytics.CrossTab": {
            "type": "object",
            "properties": {
                "rowField": {
                    "type": "string"
                },
                "colField": {
                    "type": "string"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "cols": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "cells": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.CrossTabCell"
                    }
                }
            }
        },
        "analytics.GeoView": {
            "type": "object",
            "properties": {
                "points": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.GeoCount"
                    }
                },
                "unmapped": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.GroupCount"
                    }
                }
            }
        },
        "analytics.View": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "bar",
                        "line",
                        "pie",
                        "scatter",
                        "distribution",
                        "heatmap",
                        "map"
                    ]
                },
                "title": {
                    "type": "string"
                },
                "groups": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.GroupCount"
                    }
                },
                "points": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Point"
                    }
                },
                "samples": {
                    "$ref": "#/definitions/analytics.Samples"
                },
                "crossTab": {
                    "$ref": "#/definitions/analytics.CrossTab"
                },
                "geo": {
                    "$ref": "#/definitions/analytics.GeoView"
                }
            }
        },
        "analytics.Dashboard": {
            "type": "object",
            "properties": {
                "criteria": {
                    "$ref": "#/definitions/model.FilterCriteria"
                },
                "total": {
                    "type": "integer"
                },
                "summary": {
                    "$ref": "#/definitions/analytics.Summary"
                },
                "cards": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/analytics.Card"
                    }
                },
                "options": {
                    "$ref": "#/definitions/analytics.FilterOptions"
                },
                "views": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/analytics.View"
                    }
                }
            }
        },
        "export.Result": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "format": {
                    "type": "string"
                },
                "file": {
                    "type": "string"
                },
                "path": {
                    "type": "string"
                },
                "record_count": {
                    "type": "integer"
                },
                "size": {
                    "type": "integer"
                },
                "download_url": {
                    "type": "string"
                },
                "exported_at": {
                    "type": "string"
                }
            }
        },
        "handler.ExportRequest": {
            "type": "object",
            "properties": {
                "format": {
                    "type": "string",
                    "example": "csv",
                    "description": "Format is csv, json, xlsx or sqlite; empty means csv."
                },
                "criteria": {
                    "$ref": "#/definitions/model.FilterCriteria"
                },
                "dashboard": {
                    "type": "boolean",
                    "description": "Dashboard exports the computed dashboard as JSON instead of rows."
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Road Accident Dashboard API",
	Description:      "Filters, summaries and chart views over a road accident dataset.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
