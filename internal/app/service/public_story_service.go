package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Query parameter names of the public listing.
const (
	ParamLanguage   = "lang"
	ParamPage       = "page"
	ParamPerPage    = "per_page"
	ParamOrigin     = "procedencia"
	ParamProfession = "profesion"
	ParamTag        = "etiqueta"
)

type PublicListParams struct {
	Language   string
	Page       int
	PerPage    int
	Origin     string
	Profession string
	TagName    string
	// BasePath is the request path the pagination links point at.
	BasePath string
}

type PaginationMeta struct {
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
	TotalItems int64   `json:"total_items"`
	NextURL    *string `json:"next_url"`
	PrevURL    *string `json:"prev_url"`
}

type PublicStoryPage struct {
	Items []model.StoryResponse `json:"items"`
	Meta  PaginationMeta        `json:"meta"`
}

type PublicStoryService interface {
	ListPublicStories(ctx context.Context, params PublicListParams) (*PublicStoryPage, error)
	GetPublicStory(ctx context.Context, id uint, language string) (*model.StoryResponse, error)
}

type publicStoryService struct {
	storyRepo       repository.StoryRepository
	defaultLanguage string
}

func NewPublicStoryService(storyRepo repository.StoryRepository, defaultLanguage string) PublicStoryService {
	return &publicStoryService{
		storyRepo:       storyRepo,
		defaultLanguage: defaultLanguage,
	}
}

func (s *publicStoryService) normalize(params PublicListParams) PublicListParams {
	params.Language = s.language(params.Language)
	if params.Page < 1 {
		params.Page = 1
	}
	switch {
	case params.PerPage < 1:
		params.PerPage = DefaultPerPage
	case params.PerPage > MaxPerPage:
		params.PerPage = MaxPerPage
	}
	params.Origin = strings.TrimSpace(params.Origin)
	params.Profession = strings.TrimSpace(params.Profession)
	params.TagName = strings.TrimSpace(params.TagName)
	return params
}

func (s *publicStoryService) language(lang string) string {
	if lang = model.NormalizeLanguageCode(lang); lang != "" {
		return lang
	}
	return model.NormalizeLanguageCode(s.defaultLanguage)
}

func (s *publicStoryService) ListPublicStories(ctx context.Context, params PublicListParams) (*PublicStoryPage, error) {
	params = s.normalize(params)

	stories, total, err := s.storyRepo.FindPublic(ctx, repository.PublicStoryFilter{
		Origin:     params.Origin,
		Profession: params.Profession,
		TagName:    params.TagName,
		Limit:      params.PerPage,
		Offset:     (params.Page - 1) * params.PerPage,
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.StoryResponse, 0, len(stories))
	for i := range stories {
		items = append(items, stories[i].ToResponse(params.Language, false))
	}

	return &PublicStoryPage{
		Items: items,
		Meta:  buildPaginationMeta(params, total),
	}, nil
}

func (s *publicStoryService) GetPublicStory(ctx context.Context, id uint, language string) (*model.StoryResponse, error) {
	story, err := s.storyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	resp := story.ToResponse(s.language(language), false)
	return &resp, nil
}

func buildPaginationMeta(params PublicListParams, total int64) PaginationMeta {
	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	meta := PaginationMeta{
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		TotalItems: total,
	}

	if params.Page < totalPages {
		link := pageLink(params, params.Page+1)
		meta.NextURL = &link
	}
	if params.Page > 1 && totalPages > 0 {
		prev := params.Page - 1
		if prev > totalPages {
			prev = totalPages
		}
		link := pageLink(params, prev)
		meta.PrevURL = &link
	}
	return meta
}

// pageLink keeps the language, page size and every active filter.
func pageLink(params PublicListParams, page int) string {
	q := url.Values{}
	q.Set(ParamLanguage, params.Language)
	q.Set(ParamPage, strconv.Itoa(page))
	q.Set(ParamPerPage, strconv.Itoa(params.PerPage))
	if params.Origin != "" {
		q.Set(ParamOrigin, params.Origin)
	}
	if params.Profession != "" {
		q.Set(ParamProfession, params.Profession)
	}
	if params.TagName != "" {
		q.Set(ParamTag, params.TagName)
	}
	return params.BasePath + "?" + q.Encode()
}
