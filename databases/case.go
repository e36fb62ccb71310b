package databases

// go generate: mockery --name CaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evidware/case-api/models"
)

const caseCollectionName = "cases"

// CaseDatabase contains the methods to use with the case collection
type CaseDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Case, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Case, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.Case, error)
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Case, error) {
	caseItem := &models.Case{}
	err := c.db.Collection(caseCollectionName).FindOne(ctx, filter, opts...).Decode(&caseItem)
	if err != nil {
		return nil, err
	}
	return caseItem, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error) {
	var cases []models.Case
	cur := c.db.Collection(caseCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&cases)
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *caseDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(caseCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *caseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	return c.db.Collection(caseCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (c *caseDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(caseCollectionName).DeleteOne(ctx, filter, opts...)
}

func (c *caseDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Case, error) {
	caseItem := &models.Case{}
	err := c.db.Collection(caseCollectionName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&caseItem)
	if err != nil {
		return nil, err
	}
	return caseItem, nil
}
