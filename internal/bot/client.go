package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"vetblood/internal/platform/middleware"
	dErrors "vetblood/pkg/domain-errors"
)

// Profile is the slice of the user resource the bot renders.
type Profile struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// PetSummary is the slice of the pet resource the bot renders.
type PetSummary struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed"`
	BloodType string `json:"blood_type"`
}

type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// APIClient talks to the REST API on behalf of the Telegram user each
// update came from, using the shared service token.
type APIClient struct {
	http         *resty.Client
	serviceToken string
}

func NewAPIClient(baseURL, serviceToken string) *APIClient {
	return &APIClient{
		http:         resty.New().SetBaseURL(baseURL),
		serviceToken: serviceToken,
	}
}

func (c *APIClient) Profile(ctx context.Context, telegramID int64) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, telegramID, "/api/users/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Pets(ctx context.Context, telegramID int64) ([]PetSummary, error) {
	var out []PetSummary
	if err := c.get(ctx, telegramID, "/api/pets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) get(ctx context.Context, telegramID int64, path string, out any) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(middleware.ServiceTokenHeader, c.serviceToken).
		SetHeader(middleware.ActingIDHeader, strconv.FormatInt(telegramID, 10)).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "API unreachable")
	}
	if resp.IsError() {
		code := dErrors.Code(apiErr.Code)
		if code == "" {
			code = dErrors.CodeInternal
		}
		return dErrors.New(code, fmt.Sprintf("API %s: %s", path, apiErr.Message))
	}
	return nil
}
