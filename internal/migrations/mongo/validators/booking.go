package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"user_id",
			"service_id",
			"provider_id",
			"booking_date",
			"booking_time",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id":          bson.M{"bsonType": "string", "minLength": 1},
			"user_id":     bson.M{"bsonType": "string", "minLength": 1},
			"service_id":  bson.M{"bsonType": "string", "minLength": 1},
			"provider_id": bson.M{"bsonType": "string", "minLength": 1},

			"booking_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"booking_time": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{2}:\d{2}$`,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{"bsonType": "string"},
		},
	},
}
