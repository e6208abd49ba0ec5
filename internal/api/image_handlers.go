package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

func (s *Server) registerImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listImages",
		Method:      http.MethodGet,
		Path:        "/api/v1/images",
		Summary:     "List images",
		Description: "Returns every image whose source is a supported image or video",
		Tags:        []string{"Images"},
	}, s.handleListImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "getImage",
		Method:      http.MethodGet,
		Path:        "/api/v1/images/{id}",
		Summary:     "Get image",
		Description: "Returns an image with one tag option per known tag",
		Tags:        []string{"Images"},
	}, s.handleGetImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getImageTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/images/{id}/tags",
		Summary:     "Get image tags",
		Description: "Returns the tags assigned to an image",
		Tags:        []string{"Images"},
	}, s.handleGetImageTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "setImageTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/images/{id}/tags",
		Summary:     "Set image tags",
		Description: "Makes the image's assigned tags equal to tag_ids",
		Tags:        []string{"Images"},
	}, s.handleSetImageTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearImageTags",
		Method:      http.MethodDelete,
		Path:        "/api/v1/images/{id}/tags",
		Summary:     "Clear image tags",
		Description: "Removes every tag assignment of the image",
		Tags:        []string{"Images"},
	}, s.handleClearImageTags)
}

// === DTOs ===

// ListImagesResponse contains the gallery.
type ListImagesResponse struct {
	Images []ImageResponse `json:"images" doc:"Gallery images"`
}

// ListImagesOutput wraps the list images response for Huma.
type ListImagesOutput struct {
	Body ListImagesResponse
}

// ImagePathInput identifies an image.
type ImagePathInput struct {
	ID string `path:"id" format:"uuid" doc:"Image ID"`
}

// GetImageInput contains parameters for getting an image.
type GetImageInput struct {
	ID string `path:"id" format:"uuid" doc:"Image ID"`
	Q  string `query:"q" maxLength:"100" doc:"Filter tag options by name"`
}

// ImageDetailResponse contains an image and its tag options.
type ImageDetailResponse struct {
	Image           ImageResponse       `json:"image" doc:"The image"`
	Tags            []TagOptionResponse `json:"tags" doc:"One option per (filtered) tag, sorted by name"`
	Assigned        []TagResponse       `json:"assigned" doc:"Tags assigned to the image"`
	DuplicateTagIDs []string            `json:"duplicate_tag_ids,omitempty" doc:"Tags assigned more than once"`
	TotalTags       int                 `json:"total_tags" doc:"Size of the unfiltered tag catalogue"`
}

// ImageDetailOutput wraps the image detail response for Huma.
type ImageDetailOutput struct {
	Body ImageDetailResponse
}

// ImageTagsOutput wraps an image's tags for Huma.
type ImageTagsOutput struct {
	Body ListTagsResponse
}

// SetImageTagsRequest is the request body for setting an image's tags.
type SetImageTagsRequest struct {
	TagIDs []string `json:"tag_ids" maxItems:"1000" doc:"Tag IDs the image should end up with"`
}

// SetImageTagsInput wraps the set image tags request for Huma.
type SetImageTagsInput struct {
	ID   string `path:"id" format:"uuid" doc:"Image ID"`
	Body SetImageTagsRequest
}

// TagChangeOutput wraps the tag change response for Huma.
type TagChangeOutput struct {
	Body TagChangeResponse
}

// === Handlers ===

func (s *Server) handleListImages(ctx context.Context, _ *struct{}) (*ListImagesOutput, error) {
	items, err := s.services.Catalog.Gallery(ctx)
	if err != nil {
		return nil, err
	}

	resp := ListImagesResponse{Images: make([]ImageResponse, 0, len(items))}
	for _, item := range items {
		resp.Images = append(resp.Images, toImageResponse(item))
	}
	return &ListImagesOutput{Body: resp}, nil
}

func (s *Server) handleGetImage(ctx context.Context, input *GetImageInput) (*ImageDetailOutput, error) {
	imageID, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Catalog.Detail(ctx, imageID, input.Q)
	if err != nil {
		return nil, err
	}

	resp := ImageDetailResponse{
		Image:     toImageResponse(detail.Item),
		Tags:      make([]TagOptionResponse, 0, len(detail.Tags)),
		Assigned:  toTagResponses(detail.Assigned),
		TotalTags: detail.TotalTags,
	}
	for _, opt := range detail.Tags {
		resp.Tags = append(resp.Tags, TagOptionResponse{
			TagResponse: toTagResponse(opt.Tag),
			Checked:     opt.Checked,
		})
	}
	for _, pair := range detail.Duplicates {
		resp.DuplicateTagIDs = append(resp.DuplicateTagIDs, pair.Tag.String())
	}
	return &ImageDetailOutput{Body: resp}, nil
}

func (s *Server) handleGetImageTags(ctx context.Context, input *ImagePathInput) (*ImageTagsOutput, error) {
	imageID, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Catalog.ImageTags(ctx, imageID)
	if err != nil {
		return nil, err
	}
	return &ImageTagsOutput{Body: ListTagsResponse{Tags: toTagResponses(tags)}}, nil
}

func (s *Server) handleSetImageTags(ctx context.Context, input *SetImageTagsInput) (*TagChangeOutput, error) {
	imageID, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]uuid.UUID, 0, len(input.Body.TagIDs))
	for _, raw := range input.Body.TagIDs {
		tagID, err := parseID("tag_ids", raw)
		if err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}

	result, err := s.services.Tagging.Apply(ctx, imageID, tagIDs)
	if err != nil {
		return nil, withAppliedChange(err, result)
	}
	return &TagChangeOutput{Body: toTagChangeResponse(result)}, nil
}

func (s *Server) handleClearImageTags(ctx context.Context, input *ImagePathInput) (*TagChangeOutput, error) {
	imageID, err := parseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Tagging.Clear(ctx, imageID)
	if err != nil {
		return nil, withAppliedChange(err, result)
	}
	return &TagChangeOutput{Body: toTagChangeResponse(result)}, nil
}
