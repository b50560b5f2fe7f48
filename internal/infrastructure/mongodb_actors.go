package infrastructure

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Agurato/marquee/internal/model"
)

// SearchActors returns the actors whose name contains the search, ignoring case
func (m MongoDB) SearchActors(ctx context.Context, name string) (actors []model.Actor, err error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	actorsCur, err := m.actorsColl.Find(ctx, bson.M{"name": partialMatch(name)}, opts)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving actors from DB: %w", err)
	}
	if err = actorsCur.All(ctx, &actors); err != nil {
		return nil, fmt.Errorf("error while decoding actors from DB: %w", err)
	}
	return actors, nil
}

// SearchActorIDs returns the IDs of the actors whose name contains the search, ignoring case
func (m MongoDB) SearchActorIDs(ctx context.Context, name string) ([]primitive.ObjectID, error) {
	actors, err := m.SearchActors(ctx, name)
	if err != nil {
		return nil, err
	}
	return lo.Map(actors, func(actor model.Actor, _ int) primitive.ObjectID {
		return actor.ID
	}), nil
}
