package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"amount_cents",
			"currency",
			"payer_email",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"amount_cents": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"payer_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"created",
					"processing",
					"complete",
					"failed",
				},
			},

			"checkout_url": bson.M{
				"bsonType": "string",
			},

			"external_ref": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
