package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// minResultRunes is the floor below which an OCR result is treated as noise.
const minResultRunes = 10

// TesseractEngine shells out to pdftoppm and tesseract. It renders the page
// to an image, then tries a small matrix of {language, page-segmentation-mode}
// configurations and keeps the longest result above the noise floor.
type TesseractEngine struct {
	Languages []string
	PSModes   []string
}

var _ Engine = &TesseractEngine{}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{
		Languages: []string{"chi_sim+eng", "chi_sim", "eng"},
		PSModes:   []string{"3", "6"},
	}
}

// Available reports whether the tesseract binary is on PATH.
func Available() bool {
	return exec.Command("tesseract", "--version").Run() == nil
}

func (e *TesseractEngine) RecognizePage(ctx context.Context, documentPath string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "ocr-page-")
	if err != nil {
		return "", fmt.Errorf("create ocr workdir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imagePath, err := renderPage(ctx, documentPath, page, tmpDir)
	if err != nil {
		return "", err
	}

	best := ""
	for _, lang := range e.Languages {
		for _, psm := range e.PSModes {
			text, err := runTesseract(ctx, imagePath, lang, psm)
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if utf8.RuneCountInString(text) > minResultRunes &&
				utf8.RuneCountInString(text) > utf8.RuneCountInString(best) {
				best = text
			}
		}
	}

	return best, nil
}

// renderPage rasterizes one PDF page with pdftoppm and returns the image path.
func renderPage(ctx context.Context, documentPath string, page int, dir string) (string, error) {
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", "300",
		"-png",
		documentPath, prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w (%s)", page, err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	return matches[0], nil
}

func runTesseract(ctx context.Context, imagePath, lang, psm string) (string, error) {
	cmd := exec.CommandContext(ctx, "tesseract", imagePath, "stdout", "-l", lang, "--psm", psm)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract lang=%s psm=%s: %w", lang, psm, err)
	}
	return string(out), nil
}
