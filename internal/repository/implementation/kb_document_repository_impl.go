package implementation

import (
	"context"

	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/mapper"
	"school-concierge-be/internal/model"
	"school-concierge-be/internal/repository/contract"
	"school-concierge-be/internal/repository/specification"

	"gorm.io/gorm"
)

type KbDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KbDocumentMapper
}

func NewKbDocumentRepository(db *gorm.DB) contract.KbDocumentRepository {
	return &KbDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKbDocumentMapper(),
	}
}

func (r *KbDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KbDocumentRepositoryImpl) Create(ctx context.Context, document *entity.KbDocument) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *KbDocumentRepositoryImpl) CreateBulk(ctx context.Context, documents []*entity.KbDocument) error {
	if len(documents) == 0 {
		return nil
	}
	models := r.mapper.ToModels(documents)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*documents[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KbDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbDocument, error) {
	var models []*model.KbDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KbDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KbDocument{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll empties the table ahead of a full re-ingest.
func (r *KbDocumentRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.KbDocument{}).Error
}
