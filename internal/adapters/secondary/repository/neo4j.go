package repository

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

type Neo4jGraphRepo struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jGraphRepo(driver neo4j.DriverWithContext) *Neo4jGraphRepo {
	return &Neo4jGraphRepo{driver: driver}
}

// EnsureSchema crée les index pour que les lookups par ID soient O(1)
func (r *Neo4jGraphRepo) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Contrainte d'unicité sur User.id (crée aussi un index)
		query := `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	return err
}

// FollowedUsers : (u)-[:FOLLOWS]->(f). L'ordre du graphe = ordre de création de l'arête.
func (r *Neo4jGraphRepo) FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	query := `
		MATCH (u:User {id: $userId})-[r:FOLLOWS]->(f:User)
		RETURN f.id AS id, f.username AS username, f.first_name AS firstName, f.last_name AS lastName
		ORDER BY r.created_at, f.id
	`
	return r.readUsers(ctx, query, map[string]any{"userId": userID})
}

// Followers : l'inverse, (f)-[:FOLLOWS]->(u)
func (r *Neo4jGraphRepo) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	query := `
		MATCH (u:User {id: $userId})<-[r:FOLLOWS]-(f:User)
		RETURN f.id AS id, f.username AS username, f.first_name AS firstName, f.last_name AS lastName
		ORDER BY r.created_at, f.id
	`
	return r.readUsers(ctx, query, map[string]any{"userId": userID})
}

func (r *Neo4jGraphRepo) GetRelationStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Une seule requête pour checker les deux sens
		query := `
			MATCH (a:User {id: $actorId}), (b:User {id: $targetId})
			RETURN EXISTS { (a)-[:FOLLOWS]->(b) } AS following,
			       EXISTS { (b)-[:FOLLOWS]->(a) } AS followedBy
		`
		res, err := tx.Run(ctx, query, map[string]any{"actorId": actorID, "targetId": targetID})
		if err != nil {
			return nil, err
		}

		if res.Next(ctx) {
			rec := res.Record()
			following, _ := rec.Get("following")
			followedBy, _ := rec.Get("followedBy")
			f, _ := following.(bool)
			fb, _ := followedBy.(bool)
			return &domain.RelationStatus{IsFollowing: f, IsFollowedBy: fb}, nil
		}
		// Si aucun noeud trouvé, on considère false/false
		return &domain.RelationStatus{}, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.RelationStatus), nil
}

func (r *Neo4jGraphRepo) readUsers(ctx context.Context, query string, params map[string]any) ([]*domain.User, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		users := make([]*domain.User, 0)
		for res.Next(ctx) {
			users = append(users, recordToUser(res.Record()))
		}
		return users, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.User), nil
}

func recordToUser(rec *neo4j.Record) *domain.User {
	return &domain.User{
		ID:        recordString(rec, "id"),
		Username:  recordString(rec, "username"),
		FirstName: recordString(rec, "firstName"),
		LastName:  recordString(rec, "lastName"),
	}
}

// recordString : les propriétés absentes reviennent en nil côté driver
func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
