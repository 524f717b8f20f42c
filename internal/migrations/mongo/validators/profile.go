package validators

import "go.mongodb.org/mongo-driver/bson"

var ProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id": bson.M{"bsonType": "string", "minLength": 1},

			"first_name": bson.M{"bsonType": "string", "maxLength": 100},
			"last_name":  bson.M{"bsonType": "string", "maxLength": 100},

			// An empty role means the account has not picked one yet.
			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					"",
					"client",
					"provider",
					"admin",
				},
			},
		},
	},
}
