package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TesseractRecognizer runs the tesseract CLI in TSV mode and groups its
// word boxes into line fragments.
type TesseractRecognizer struct {
	binary string
	// psm is tesseract's page segmentation mode; 6 assumes a uniform
	// block of text, which matches a reading rectangle
	psm string
}

// NewTesseractRecognizer checks that tesseract is installed.
func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract not in PATH", ErrRecognition)
	}
	return &TesseractRecognizer{binary: path, psm: "6"}, nil
}

// tesseractLangs maps language hint tags onto tesseract traineddata names.
var tesseractLangs = map[string]string{
	"en-us": "eng",
	"en-gb": "eng",
	"es":    "spa",
	"fr-fr": "fra",
	"hi":    "hin",
	"it":    "ita",
	"ja":    "jpn",
	"pt-br": "por",
	"cmn":   "chi_sim",
}

// langArg converts hint tags to tesseract's "+"-joined language argument,
// deduplicated, defaulting to English.
func langArg(languages []string) string {
	seen := map[string]bool{}
	var codes []string
	for _, tag := range languages {
		code, ok := tesseractLangs[strings.ToLower(tag)]
		if !ok {
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return "eng"
	}
	return strings.Join(codes, "+")
}

// Recognize OCRs the image and returns one fragment per text line, in
// tesseract's reading order, with boxes normalized to the image dimensions.
func (r *TesseractRecognizer) Recognize(ctx context.Context, imagePath string, languages []string) ([]Fragment, error) {
	cmd := exec.CommandContext(ctx, r.binary,
		imagePath, "stdout",
		"-l", langArg(languages),
		"--psm", r.psm,
		"tsv")
	output, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%w: tesseract: %s", ErrRecognition, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%w: tesseract: %v", ErrRecognition, err)
	}
	return parseTSV(output)
}

// tsv row levels we care about.
const (
	tsvLevelPage = 1
	tsvLevelWord = 5
)

// parseTSV turns tesseract's TSV output into line fragments. Words sharing a
// (block, paragraph, line) key are joined with single spaces; their box is
// the union of the word boxes, normalized by the page dimensions from the
// level-1 row.
func parseTSV(data []byte) ([]Fragment, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	var pageW, pageH float64

	type lineAcc struct {
		words                    []string
		left, top, right, bottom float64
	}
	var order []string
	acc := map[string]*lineAcc{}

	for _, row := range lines[1:] {
		if strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		level, err := strconv.Atoi(cols[0])
		if err != nil {
			continue
		}

		left, _ := strconv.ParseFloat(cols[6], 64)
		top, _ := strconv.ParseFloat(cols[7], 64)
		width, _ := strconv.ParseFloat(cols[8], 64)
		height, _ := strconv.ParseFloat(cols[9], 64)

		switch level {
		case tsvLevelPage:
			pageW, pageH = width, height

		case tsvLevelWord:
			conf, _ := strconv.ParseFloat(cols[10], 64)
			text := strings.TrimSpace(cols[11])
			if text == "" || conf < 0 {
				continue
			}
			// block_num, par_num, line_num identify the text line
			key := cols[2] + "/" + cols[3] + "/" + cols[4]
			a, ok := acc[key]
			if !ok {
				a = &lineAcc{left: left, top: top, right: left + width, bottom: top + height}
				acc[key] = a
				order = append(order, key)
			}
			a.words = append(a.words, text)
			a.left = min(a.left, left)
			a.top = min(a.top, top)
			a.right = max(a.right, left+width)
			a.bottom = max(a.bottom, top+height)
		}
	}

	if pageW <= 0 || pageH <= 0 {
		return nil, fmt.Errorf("%w: tsv output missing page dimensions", ErrRecognition)
	}

	fragments := make([]Fragment, 0, len(order))
	for _, key := range order {
		a := acc[key]
		fragments = append(fragments, Fragment{
			Text: strings.Join(a.words, " "),
			Box: Box{
				X: a.left / pageW,
				Y: a.top / pageH,
				W: (a.right - a.left) / pageW,
				H: (a.bottom - a.top) / pageH,
			},
		})
	}
	return fragments, nil
}
