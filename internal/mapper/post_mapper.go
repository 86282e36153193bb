package mapper

import (
	"cognimed-be/internal/entity"
	"cognimed-be/internal/model"
)

type PostMapper struct{}

func NewPostMapper() *PostMapper {
	return &PostMapper{}
}

func (m *PostMapper) ToEntity(p *model.Post) *entity.Post {
	if p == nil {
		return nil
	}
	return &entity.Post{
		Id:          p.PostId,
		UserId:      p.UserId,
		DoctorId:    p.DoctorId,
		Text:        p.Text,
		CreatedTime: p.CreatedTime,
		ParentId:    p.ParentId,
		Replies:     m.ToEntitiesFromValues(p.Replies),
	}
}

// ToModel does not carry replies; they are persisted as their own rows.
func (m *PostMapper) ToModel(p *entity.Post) *model.Post {
	if p == nil {
		return nil
	}
	return &model.Post{
		PostId:      p.Id,
		UserId:      p.UserId,
		DoctorId:    p.DoctorId,
		Text:        p.Text,
		CreatedTime: p.CreatedTime,
		ParentId:    p.ParentId,
	}
}

func (m *PostMapper) ToEntities(posts []*model.Post) []*entity.Post {
	entities := make([]*entity.Post, len(posts))
	for i, p := range posts {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *PostMapper) ToEntitiesFromValues(posts []model.Post) []*entity.Post {
	entities := make([]*entity.Post, len(posts))
	for i := range posts {
		entities[i] = m.ToEntity(&posts[i])
	}
	return entities
}
