package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBreedRequest_RequiresBothCrops(t *testing.T) {
	crop := &CropImage{Data: []byte{1, 2, 3}, MimeType: "image/png"}

	_, err := NewBreedRequest(crop, nil)
	require.ErrorIs(t, err, ErrMissingCrop)

	_, err = NewBreedRequest(nil, crop)
	require.ErrorIs(t, err, ErrMissingCrop)

	_, err = NewBreedRequest(crop, &CropImage{})
	require.ErrorIs(t, err, ErrMissingCrop)
}

func TestNewBreedRequest_KeepsOrderAndPrompt(t *testing.T) {
	first := &CropImage{Data: []byte("first")}
	second := &CropImage{Data: []byte("second")}

	req, err := NewBreedRequest(first, second)
	require.NoError(t, err)
	require.Equal(t, BreedPrompt, req.Prompt)
	require.Equal(t, []*CropImage{first, second}, req.Images())
}

func TestNewFailedResult(t *testing.T) {
	res := NewFailedResult(errors.New("quota exceeded"))
	require.True(t, res.Failed)
	require.True(t, strings.HasPrefix(res.Text, ErrorPrefix))
	require.Equal(t, "Error generating breed description: quota exceeded", res.Text)
	require.Equal(t, []byte(res.Text), res.Bytes())
}
