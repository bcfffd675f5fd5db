package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the plaque services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoLocation",
		Fields: graphql.Fields{
			"latitude":   &graphql.Field{Type: graphql.Float},
			"longitude":  &graphql.Field{Type: graphql.Float},
			"confidence": &graphql.Field{Type: graphql.Float},
		},
	})

	cameraType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CameraPosition",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"bearing":   &graphql.Field{Type: graphql.Float},
		},
	})

	photoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Photo",
		Fields: graphql.Fields{
			"url":             &graphql.Field{Type: graphql.String},
			"camera_position": &graphql.Field{Type: cameraType},
		},
	})

	croppingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CroppingCoordinates",
		Fields: graphql.Fields{
			"x":      &graphql.Field{Type: graphql.Float},
			"y":      &graphql.Field{Type: graphql.Float},
			"width":  &graphql.Field{Type: graphql.Float},
			"height": &graphql.Field{Type: graphql.Float},
		},
	})

	plaqueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plaque",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"text":                 &graphql.Field{Type: graphql.String},
			"location":             &graphql.Field{Type: locationType},
			"bearing":              &graphql.Field{Type: graphql.Float},
			"confidence":           &graphql.Field{Type: graphql.Int},
			"photo":                &graphql.Field{Type: photoType},
			"cropped_image_url":    &graphql.Field{Type: graphql.String},
			"cropping_coordinates": &graphql.Field{Type: croppingType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plaque": &graphql.Field{
				Type:        plaqueType,
				Description: "Get a plaque by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Detail.Get(p.Context, id)
				},
			},
			"plaques": &graphql.Field{
				Type:        graphql.NewList(plaqueType),
				Description: "List or search plaques",
				Args: graphql.FieldConfigArgument{
					"query":                &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"confidence_threshold": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":                &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
					"offset":               &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					query := p.Args["query"].(string)
					threshold := p.Args["confidence_threshold"].(int)
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)

					if query != "" {
						batch, err := deps.Source.Search(p.Context, query, ports.SearchOptions{
							ConfidenceThreshold: threshold,
							Limit:               limit,
							Offset:              offset,
						})
						if err != nil {
							return nil, err
						}
						return batch.Records, nil
					}
					batch, err := deps.Source.FetchAll(p.Context, ports.FetchOptions{
						ConfidenceThreshold: threshold,
						Limit:               limit,
						Offset:              offset,
					})
					if err != nil {
						return nil, err
					}
					return batch.Records, nil
				},
			},
			"plaquesByPhoto": &graphql.Field{
				Type:        graphql.NewList(plaqueType),
				Description: "Plaques extracted from one source photo",
				Args: graphql.FieldConfigArgument{
					"photo_id":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"confidence_threshold": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					photoID := p.Args["photo_id"].(string)
					threshold := p.Args["confidence_threshold"].(int)
					return deps.Source.FetchByPhotoID(p.Context, photoID, threshold)
				},
			},
			"markers": &graphql.Field{
				Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
					Name: "Marker",
					Fields: graphql.Fields{
						"kind":    &graphql.Field{Type: graphql.String},
						"record":  &graphql.Field{Type: plaqueType},
						"bearing": &graphql.Field{Type: graphql.Float},
						"position": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
							Name: "MarkerPosition",
							Fields: graphql.Fields{
								"lat": &graphql.Field{Type: graphql.Float},
								"lng": &graphql.Field{Type: graphql.Float},
							},
						})},
						"cluster": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
							Name: "ClusterGroup",
							Fields: graphql.Fields{
								"key":         &graphql.Field{Type: graphql.String},
								"count":       &graphql.Field{Type: graphql.Int},
								"span_meters": &graphql.Field{Type: graphql.Float},
							},
						})},
					},
				})),
				Description: "Density-managed marker list for a zoom level",
				Args: graphql.FieldConfigArgument{
					"zoom":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zoom := p.Args["zoom"].(int)
					limit := p.Args["limit"].(int)
					if limit <= 0 {
						limit = deps.Policy.MarkerLimit(zoom)
					}
					batch, err := deps.Source.FetchAll(p.Context, ports.FetchOptions{
						ConfidenceThreshold: deps.Cfg.API.ConfidenceThreshold,
						Limit:               limit,
					})
					if err != nil {
						return nil, err
					}
					return usecases.BuildMarkers(batch.Records, zoom, deps.Policy), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
