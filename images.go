package readability

import (
	"context"
	"encoding/base64"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentImageFetches bounds the image requests in flight for one
// article.
const maxConcurrentImageFetches = 4

// Image is an image of the article content.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
	// Size in bytes.
	Size int64 `json:"size"`
}

func (a *Article) imageFetcher() ImageFetcher {
	if a.opts != nil && a.opts.imageFetcher != nil {
		return a.opts.imageFetcher
	}
	return NewHTTPImageFetcher()
}

// Images lists the images of the content in document order, along with
// their size. Images whose size cannot be fetched are left out. The list is
// computed once; only a cancelled ctx makes it fail.
func (a *Article) Images(ctx context.Context) ([]Image, error) {
	if a.content == nil {
		return nil, nil
	}

	a.images.mu.Lock()
	defer a.images.mu.Unlock()
	if a.images.done {
		return a.images.images, nil
	}

	var imgs = imageNodes(a.content)
	var fetcher = a.imageFetcher()
	sizes, errs, err := fetchAll(ctx, imgs, func(ctx context.Context, img *Node) (int64, error) {
		return fetcher.Size(ctx, img.GetAttribute("src"))
	})
	if err != nil {
		return nil, err
	}

	var images []Image
	for i, img := range imgs {
		if errs[i] != nil {
			a.opts.logger.Debug("cannot fetch image size", "src", img.GetAttribute("src"), "err", errs[i])
			a.opts.metrics.observeImageFailure()
			continue
		}
		images = append(images, Image{
			URL:  img.GetAttribute("src"),
			Alt:  img.GetAttribute("alt"),
			Size: sizes[i],
		})
	}

	a.images.images = images
	a.images.done = true
	return images, nil
}

type fetchedImage struct {
	data        []byte
	contentType string
}

// WithDataURIImages returns a copy of the article whose images are inlined
// as data URIs. Images smaller than minSize bytes are removed; images that
// cannot be fetched are left as they are.
func (a *Article) WithDataURIImages(ctx context.Context, minSize int64) (*Article, error) {
	if a.content == nil {
		return a, nil
	}

	var content = a.content.Clone()
	var imgs = imageNodes(content)
	var fetcher = a.imageFetcher()
	fetched, errs, err := fetchAll(ctx, imgs, func(ctx context.Context, img *Node) (fetchedImage, error) {
		data, contentType, err := fetcher.Fetch(ctx, img.GetAttribute("src"))
		return fetchedImage{data: data, contentType: contentType}, err
	})
	if err != nil {
		return nil, err
	}

	for i, img := range imgs {
		if errs[i] != nil {
			a.opts.logger.Debug("cannot fetch image", "src", img.GetAttribute("src"), "err", errs[i])
			a.opts.metrics.observeImageFailure()
			continue
		}
		if int64(len(fetched[i].data)) < minSize {
			if img.ParentNode != nil {
				_, _ = img.ParentNode.RemoveChild(img)
			}
			continue
		}
		img.SetAttribute("src", dataURI(fetched[i].contentType, fetched[i].data))
		// the data URI must win over any responsive candidate
		img.RemoveAttribute("srcset")
	}

	return a.withContent(content), nil
}

// imageNodes returns the <img> elements carrying a fetchable src.
func imageNodes(content *Node) []*Node {
	var imgs []*Node
	for _, img := range content.GetElementsByTagName("img") {
		src := strings.TrimSpace(img.GetAttribute("src"))
		if src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		imgs = append(imgs, img)
	}
	return imgs
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// fetchAll calls fn for every item with a bounded number of calls in flight.
// Results and per-item errors are returned in input order; the returned error
// is set only when ctx is done.
func fetchAll[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, []error, error) {
	var results = make([]R, len(items))
	var errs = make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentImageFetches)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = fn(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}
