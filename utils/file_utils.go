package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (5MB)
	maxFileSize = 5 * 1024 * 1024
	// Width logos are resized to before saving
	logoWidth = 320
)

// Allowed logo extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// ValidateImageType checks if the file extension is an allowed image format
func ValidateImageType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	if err := os.MkdirAll(filepath.Join(uploadBaseDir, "logos"), 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}
	return nil
}

// SaveMemberLogo resizes an uploaded logo to a fixed width and stores it
// under uploads/logos, returning the serving path.
func SaveMemberLogo(fileData []byte, filename, memberID string) (string, error) {
	if len(fileData) > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}

	cleanName := cleanFilename(filename)
	if err := ValidateImageType(cleanName); err != nil {
		return "", err
	}

	if err := InitializeStorage(); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(fileData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}
	resized := imaging.Resize(img, logoWidth, 0, imaging.Lanczos)

	storedName := fmt.Sprintf("%s-%d%s", memberID, time.Now().Unix(), strings.ToLower(filepath.Ext(cleanName)))
	fullPath := filepath.Join(uploadBaseDir, "logos", storedName)

	if err := imaging.Save(resized, fullPath); err != nil {
		return "", fmt.Errorf("failed to save logo: %v", err)
	}

	return baseURL + "/logos/" + storedName, nil
}
