package service

import (
	"context"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

type IBookService interface {
	// ListBooks returns the catalog annotated with the index state of each
	// edition (chunk count, whether a collection exists).
	ListBooks(ctx context.Context) dto.BooksResponse
}

type bookService struct {
	catalog  *catalog.Catalog
	resolver *catalog.VersionResolver
	store    vectorstore.VectorStore
}

func NewBookService(cat *catalog.Catalog, resolver *catalog.VersionResolver, store vectorstore.VectorStore) IBookService {
	return &bookService{
		catalog:  cat,
		resolver: resolver,
		store:    store,
	}
}

func (s *bookService) ListBooks(ctx context.Context) dto.BooksResponse {
	res := dto.BooksResponse{Books: make([]dto.BookItem, 0, len(s.catalog.Books))}
	for _, book := range s.catalog.Books {
		item := dto.BookItem{
			Id:       book.Id,
			Name:     book.Name,
			Versions: make([]dto.BookVersionItem, 0, len(book.Versions)),
		}
		for _, v := range book.Versions {
			collection := s.resolver.CollectionName(book.Name, v.Version)
			// Count failures degrade to "not indexed" rather than failing the
			// whole listing.
			count, err := s.store.Count(ctx, collection)
			if err != nil {
				count = 0
			}
			item.Versions = append(item.Versions, dto.BookVersionItem{
				Version:     v.Version,
				Filename:    v.Filename,
				ISBN:        v.ISBN,
				Publisher:   v.Publisher,
				PublishYear: v.PublishYear,
				ChunkCount:  count,
				Indexed:     count > 0,
			})
		}
		res.Books = append(res.Books, item)
	}
	return res
}
