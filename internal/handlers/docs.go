package handlers

import (
	"encoding/json"
	"net/http"
)

func jsonBody(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content":     jsonBody(ref("ErrorResponse")),
	}
}

// OpenAPISpec returns the OpenAPI 3.0 document for the climate chart API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	nullableNumber := map[string]interface{}{"type": "number", "nullable": true}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Climate Chart Series API",
			"description": "Temporal binning and aggregation of climate observation series",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/chart-series": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Build a chart series",
					"description": "Derive, transform, filter, bin and aggregate source series into chart points",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonBody(ref("ChartSeriesRequest")),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Chart points in bin order",
							"content":     jsonBody(ref("ChartSeriesResponse")),
						},
						"400": errorResponse("Invalid or inconsistent request parameters"),
						"404": errorResponse("Unknown data set, measurement or location"),
						"422": errorResponse("Source series cannot be combined"),
						"500": errorResponse("Internal server error"),
					},
				},
			},
			"/api/datasets": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List data sets and their measurements",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Data sets",
							"content": jsonBody(map[string]interface{}{
								"type":  "array",
								"items": ref("DataSet"),
							}),
						},
					},
				},
			},
			"/api/locations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List locations",
					"parameters": []map[string]interface{}{
						{
							"name":        "region_id",
							"in":          "query",
							"description": "Return every location in this region, ignoring pagination",
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":   "page",
							"in":     "query",
							"schema": map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":   "limit",
							"in":     "query",
							"schema": map[string]interface{}{"type": "integer", "default": 100, "maximum": 1000},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Locations"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
						"503": map[string]interface{}{"description": "Catalog store is unavailable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"SourceSeries": map[string]interface{}{
					"type":     "object",
					"required": []string{"dataSetId", "locationId", "dataType"},
					"properties": map[string]interface{}{
						"dataSetId":      map[string]string{"type": "string"},
						"locationId":     map[string]string{"type": "string", "description": "Region id for averageOfAnomaliesInRegion"},
						"dataType":       map[string]string{"type": "string"},
						"dataAdjustment": map[string]string{"type": "string"},
					},
				},
				"ChartSeriesRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"seriesSpecifications", "binningRule"},
					"properties": map[string]interface{}{
						"seriesDerivationType": map[string]interface{}{
							"type": "string",
							"enum": []string{"single", "difference", "averageOfMultiple", "averageOfAnomaliesInRegion"},
						},
						"seriesSpecifications": map[string]interface{}{"type": "array", "items": ref("SourceSeries")},
						"seriesTransformation": map[string]interface{}{
							"type": "string",
							"enum": []string{"Identity", "IsPositive", "IsNegative", "EqualOrAbove25", "EqualOrAbove35", "EqualOrAbove1", "EqualOrAbove1AndLessThan10", "EqualOrAbove10", "EqualOrAbove10AndLessThan25", "Negate", "EnsoCategory", "IsFrosty", "DayOfYearIfFrost"},
						},
						"filterToSeason":                 map[string]string{"type": "string"},
						"filterToTropicalSeason":         map[string]string{"type": "string"},
						"filterToYear":                   map[string]string{"type": "integer"},
						"filterToYearsAfterAndIncluding": map[string]string{"type": "integer"},
						"filterToYearsBefore":            map[string]string{"type": "integer"},
						"binningRule":                    map[string]string{"type": "string"},
						"cupSizeDays":                    map[string]string{"type": "integer"},
						"requiredCupDataProportion":      map[string]string{"type": "number"},
						"requiredBucketDataProportion":   map[string]string{"type": "number"},
						"requiredBinDataProportion":      map[string]string{"type": "number"},
						"binAggregationFunction":         map[string]string{"type": "string"},
						"bucketAggregationFunction":      map[string]string{"type": "string"},
						"cupAggregationFunction":         map[string]string{"type": "string"},
						"anomaly":                        map[string]string{"type": "boolean"},
						"includeRawDataPoints":           map[string]string{"type": "boolean"},
						"yearOverYearDifference":         map[string]string{"type": "boolean"},
						"smoothing": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"method":        map[string]interface{}{"type": "string", "enum": []string{"trailing", "centred"}},
								"windowSize":    map[string]string{"type": "integer"},
								"dataThreshold": map[string]string{"type": "number"},
							},
						},
					},
				},
				"ChartSeriesResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"points": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"binId": map[string]string{"type": "string"},
									"label": map[string]string{"type": "string"},
									"value": nullableNumber,
								},
							},
						},
						"rawDataPoints": map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
						"unitOfMeasure": map[string]string{"type": "string"},
						"dataCategory":  map[string]string{"type": "string"},
					},
				},
				"DataSet": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":              map[string]string{"type": "string"},
						"name":            map[string]string{"type": "string"},
						"publisher":       map[string]string{"type": "string"},
						"data_resolution": map[string]interface{}{"type": "string", "enum": []string{"daily", "monthly", "yearly"}},
						"measurements":    map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
