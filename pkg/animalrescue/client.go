// Package animalrescue is a client for the animal rescue backend API.
//
// The client holds a base URL fixed at construction and a transport. Each
// operation issues exactly one request; ids are interpolated into paths
// verbatim and transport errors are returned to the caller unchanged.
package animalrescue

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
)

// Client talks to the animal rescue backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	transport httpclient.Client
}

// New returns a client issuing requests against baseURL through transport.
// An empty baseURL makes every request path relative (e.g. "/animals");
// config.Load resolves the default from BACKEND_BASE_URL.
func New(baseURL string, transport httpclient.Client) *Client {
	return &Client{baseURL: baseURL, transport: transport}
}

// BaseURL returns the URL prefixed to every request path.
func (c *Client) BaseURL() string { return c.baseURL }

// GetAnimals lists all animals in server order.
func (c *Client) GetAnimals(ctx context.Context) ([]domain.Animal, error) {
	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/animals",
	})
	if err != nil {
		return nil, err
	}

	var animals []domain.Animal
	if err := resp.JSON(&animals); err != nil {
		return nil, err
	}
	return animals, nil
}

// SubmitAdoptionRequest files a new adoption request for in.AnimalID.
func (c *Client) SubmitAdoptionRequest(ctx context.Context, in domain.AdoptionRequestInput) (httpclient.Response, error) {
	return c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/animals/%s/adoption-requests", c.baseURL, in.AnimalID),
		Body:   in.Body(),
	})
}

// EditAdoptionRequest replaces email and notes of an existing adoption request.
func (c *Client) EditAdoptionRequest(ctx context.Context, in domain.AdoptionRequestInput) (httpclient.Response, error) {
	return c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		URL:    c.adoptionRequestURL(in),
		Body:   in.Body(),
	})
}

// DeleteAdoptionRequest withdraws an adoption request. Email and notes are ignored.
func (c *Client) DeleteAdoptionRequest(ctx context.Context, in domain.AdoptionRequestInput) (httpclient.Response, error) {
	return c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		URL:    c.adoptionRequestURL(in),
	})
}

// GetUsername returns the identity the backend associates with the forwarded credentials.
func (c *Client) GetUsername(ctx context.Context) (string, error) {
	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/whoami",
	})
	if err != nil {
		return "", err
	}
	return parseIdentity(resp)
}

func (c *Client) adoptionRequestURL(in domain.AdoptionRequestInput) string {
	return fmt.Sprintf("%s/animals/%s/adoption-requests/%s", c.baseURL, in.AnimalID, in.AdoptionRequestID)
}

// parseIdentity accepts both a plain text body and a JSON string.
func parseIdentity(resp httpclient.Response) (string, error) {
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '"' {
		return string(body), nil
	}
	var name string
	if err := resp.JSON(&name); err != nil {
		return "", err
	}
	return name, nil
}
