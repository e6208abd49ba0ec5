package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the tag catalogue sorted by name, optionally filtered by q",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a tag and optionally assigns it to an image. Answers 201 when the tag was created and 200 when an existing tag with the same name was reused.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Q string `query:"q" maxLength:"100" doc:"Full-text filter on tag names"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name    string `json:"name" minLength:"1" maxLength:"256" doc:"Tag name"`
	ImageID string `json:"image_id,omitempty" required:"false" doc:"Image to assign the tag to"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// CreateTagResponse contains the tag and, when an image was given, the
// assignment made.
type CreateTagResponse struct {
	Tag     TagResponse        `json:"tag" doc:"The created or reused tag"`
	Created bool               `json:"created" doc:"False when an existing tag was reused"`
	Change  *TagChangeResponse `json:"change,omitempty" doc:"Assignment made to image_id"`
}

// CreateTagOutput wraps the create tag response for Huma.
type CreateTagOutput struct {
	Status int
	Body   CreateTagResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	tags, err := s.services.Catalog.Tags(ctx, input.Q)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: toTagResponses(tags)}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*CreateTagOutput, error) {
	if input.Body.ImageID == "" {
		tag, created, err := s.services.Tagging.CreateTag(ctx, input.Body.Name)
		if err != nil {
			return nil, err
		}
		return &CreateTagOutput{
			Status: createStatus(created),
			Body: CreateTagResponse{
				Tag:     toTagResponse(tag),
				Created: created,
			},
		}, nil
	}

	imageID, err := parseID("image_id", input.Body.ImageID)
	if err != nil {
		return nil, err
	}

	got, err := s.services.Tagging.CreateAndAssign(ctx, imageID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	change := toTagChangeResponse(got.Change)
	return &CreateTagOutput{
		Status: createStatus(got.Created),
		Body: CreateTagResponse{
			Tag:     toTagResponse(got.Tag),
			Created: got.Created,
			Change:  &change,
		},
	}, nil
}

// createStatus is 201 for a new tag and 200 when an existing one was reused.
func createStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
