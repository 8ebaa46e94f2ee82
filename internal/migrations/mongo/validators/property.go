package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"description",
			"location",
			"host_id",
			"nightly_rate_cents",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 255,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 255,
			},

			"host_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"nightly_rate_cents": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
