package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// Page is one loaded page: its glyphs in content stream order and the
// rulings painted on it, in top-left coordinates
type Page struct {
	Number  int
	Width   float64
	Height  float64
	Objects Objects

	opts *options
}

// ExtractWords returns the words of the page in content stream order
func (p *Page) ExtractWords() []Word {
	return ExtractWords(p.Objects.Chars, p.opts.xTolerance, p.opts.yTolerance)
}

// ExtractTables returns the ruled grids of the page, top to bottom
func (p *Page) ExtractTables() []Table {
	return ExtractTables(p.Objects, p.opts.table)
}

// pageGeometry is what pdfcpu tells about a page
type pageGeometry struct {
	width   float64
	height  float64
	top     float64
	content []byte
}

// readGeometry loads the media box and the decoded content streams of the
// 1-based page pageNr
func readGeometry(ctx *model.Context, pageNr int) (pageGeometry, error) {
	if pageNr < 1 || pageNr > ctx.PageCount {
		return pageGeometry{}, errors.Errorf("page number %d out of range [1, %d]", pageNr, ctx.PageCount)
	}

	pageDict, _, attrs, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return pageGeometry{}, errors.Wrap(err, "failed to get page dict")
	}

	// Default US Letter size
	g := pageGeometry{width: 612, height: 792, top: 792}
	if attrs != nil && attrs.MediaBox != nil {
		g.width = attrs.MediaBox.Width()
		g.height = attrs.MediaBox.Height()
		g.top = attrs.MediaBox.UR.Y
	}

	g.content, err = pageContent(ctx, pageDict)
	if err != nil {
		return pageGeometry{}, errors.Wrapf(err, "page %d", pageNr)
	}
	return g, nil
}

// pageContent concatenates the decoded content streams of a page
func pageContent(ctx *model.Context, pageDict types.Dict) ([]byte, error) {
	contents, found := pageDict.Find("Contents")
	if !found || contents == nil {
		return nil, nil
	}

	var refs []types.Object
	if arr, err := ctx.DereferenceArray(contents); err == nil && arr != nil {
		refs = arr
	} else {
		refs = []types.Object{contents}
	}

	var combined []byte
	for _, ref := range refs {
		sd, _, err := ctx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, errors.Wrap(err, "failed to dereference content stream")
		}
		if sd == nil {
			continue
		}
		if len(sd.Content) == 0 {
			if err := sd.Decode(); err != nil {
				return nil, errors.Wrap(err, "failed to decode content stream")
			}
		}
		combined = append(combined, sd.Content...)
		combined = append(combined, '\n')
	}
	return combined, nil
}
