package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// analyzeExpensePrompt is the shared prompt used by all engine backends to
// produce the structured field/confidence document
const analyzeExpensePrompt = `You are an expense document analysis engine. Carefully read all text in the receipt or invoice image and emit every field you can detect, each with a confidence score.

Return ONLY valid JSON in this exact format:
{
  "expense_documents": [
    {
      "summary_fields": [
        {"type": "VENDOR_NAME", "text": "STARBUCKS COFFEE", "confidence": 97.5},
        {"type": "INVOICE_RECEIPT_DATE", "text": "2024-06-24", "confidence": 93.0},
        {"type": "TOTAL", "text": "$12.45", "confidence": 98.2}
      ],
      "line_item_groups": [
        {
          "line_items": [
            {"fields": [
              {"type": "ITEM", "text": "GRANDE LATTE", "confidence": 95.0},
              {"type": "PRICE", "text": "5.95", "confidence": 96.0}
            ]}
          ]
        }
      ]
    }
  ]
}

Rules:
- "summary_fields" holds document-level fields. Use type "VENDOR_NAME" for the merchant/store name, "INVOICE_RECEIPT_DATE" for the transaction date, "TOTAL" for the final total. Other detected fields (tax, subtotal, address) may be included with descriptive uppercase types; they will be ignored.
- "text" is the value exactly as printed on the document, including currency symbols. Do not reformat dates or amounts.
- "confidence" is a number from 0 to 100 reflecting how certain you are of the detected text.
- Each purchased item goes in "line_item_groups" as one line item with an "ITEM" field (the item name) and a "PRICE" field.
- If the image contains no receipt or invoice at all, return {"expense_documents": []}.
- Do not include any text before or after the JSON.
- Do not use markdown code blocks`

// pdfToImage converts a PDF to a PNG image
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// Render the first page only; anything past it is out of scope for
	// expense extraction
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (common on iPhones) is not covered by Go's standard image
	// decoders
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format by looking
// for an ftyp box with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// convertToPNG converts PDFs and non-PNG images to PNG format.
// Returns the PNG data and a boolean indicating if conversion occurred.
func convertToPNG(imageData []byte, mimeType string) ([]byte, bool, error) {
	if mimeType == "application/pdf" {
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, true, nil
	} else if mimeType != "image/png" || isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, true, nil
	}
	// Already PNG, return as-is
	return imageData, false, nil
}

// prepareImageData normalizes the MIME type and converts the document to PNG
// if needed. After this call the data is always PNG.
func prepareImageData(imageData []byte, contentType string) ([]byte, string, bool, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}

	finalImageData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, "", false, err
	}

	return finalImageData, "image/png", converted, nil
}
