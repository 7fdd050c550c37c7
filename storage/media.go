package storage

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// MediaStore is the CDN collaborator behind the gallery routes. The
// core never touches binaries; it only records URLs and public ids.
type MediaStore interface {
	UploadBase64(base64Src string, publicID string) (url string, err error)
	Delete(publicID string) error
}

var Media MediaStore

func InitializeMedia() {
	Media = &cloudinaryStore{
		cloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		apiKey:    os.Getenv("CLOUDINARY_API_KEY"),
		apiSecret: os.Getenv("CLOUDINARY_API_SECRET"),
		folder:    os.Getenv("CLOUDINARY_FOLDER"),
	}
}

// Cloudinary signed upload/destroy via their HTTP API.
// Env: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET,
// CLOUDINARY_FOLDER (optional).
type cloudinaryStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
}

func (c *cloudinaryStore) configured() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

func (c *cloudinaryStore) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "file" || k == "api_key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	payload := strings.Join(pairs, "&") + c.apiSecret
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

func (c *cloudinaryStore) UploadBase64(base64Src string, publicID string) (string, error) {
	if base64Src == "" {
		return "", fmt.Errorf("empty media payload")
	}
	if !c.configured() {
		return "", fmt.Errorf("cloudinary not configured")
	}

	payload := base64Src
	if i := strings.Index(base64Src, ","); i != -1 {
		payload = base64Src[i+1:]
	}

	finalPublicID := publicID
	if c.folder != "" {
		finalPublicID = c.folder + "/" + publicID
	}

	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	form.Add("signature", c.sign(form))
	form.Add("api_key", c.apiKey)
	form.Add("file", "data:image/jpeg;base64,"+payload)

	endpoint := "https://api.cloudinary.com/v1_1/" + c.cloudName + "/image/upload"
	res, err := http.PostForm(endpoint, form)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.SecureURL == "" {
		log.Error().Str("publicID", finalPublicID).Str("response", string(body)).Msg("cloudinary upload failed")
		return "", fmt.Errorf("cloudinary upload failed: %s", parsed.Error.Message)
	}
	return parsed.SecureURL, nil
}

func (c *cloudinaryStore) Delete(publicID string) error {
	if !c.configured() {
		return fmt.Errorf("cloudinary not configured")
	}

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	form.Add("signature", c.sign(form))
	form.Add("api_key", c.apiKey)

	endpoint := "https://api.cloudinary.com/v1_1/" + c.cloudName + "/image/destroy"
	res, err := http.PostForm(endpoint, form)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Result != "ok" && parsed.Result != "not found" {
		return fmt.Errorf("cloudinary destroy failed: %s", parsed.Result)
	}
	return nil
}
