package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// authorPipeline selects posts matching filter, newest id first, pages them
// and attaches each post's author (name, email, createdAt) in place of
// authorId. Paging happens before the lookup so only one page of posts is
// joined. An empty filter matches every post.
func authorPipeline(filter bson.D, skip, limit int64) mongo.Pipeline {
	var p mongo.Pipeline
	if len(filter) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: filter}})
	}

	return append(p,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "let", Value: bson.D{{Key: "authorId", Value: "$authorId"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{
					{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$authorId"}}}},
				}}},
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "name", Value: 1},
					{Key: "email", Value: 1},
					{Key: "createdAt", Value: 1},
				}}},
			}},
			{Key: "as", Value: "author"},
		}}},
		// Keep posts without an author so the read can fail loudly.
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "authorId", Value: 0}}}},
	)
}
