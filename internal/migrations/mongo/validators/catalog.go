package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"title",
			"provider_id",
			"price",
			"category_id",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id":          bson.M{"bsonType": "string", "minLength": 1},
			"provider_id": bson.M{"bsonType": "string", "minLength": 1},
			"category_id": bson.M{"bsonType": "string", "minLength": 1},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"price": bson.M{
				"bsonType":         "number",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"rating": bson.M{
				"bsonType": "number",
				"minimum":  0,
				"maximum":  5,
			},

			"review_count": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},
		},
	},
}

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"service_id",
			"user_id",
			"rating",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id":         bson.M{"bsonType": "string", "minLength": 1},
			"service_id": bson.M{"bsonType": "string", "minLength": 1},
			"user_id":    bson.M{"bsonType": "string", "minLength": 1},

			"rating": bson.M{
				"bsonType": "number",
				"minimum":  1,
				"maximum":  5,
			},

			"comment": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},
		},
	},
}
