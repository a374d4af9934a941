package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100

	msgProductNotFound = "Produto não encontrado."
)

type ProductUsecase struct {
	products repo.ProductRepository
}

// DI
func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

// 商品詳細フォームで選べるバリアント。ID がそのまま variant_id になる。
type VariantOutput struct {
	ID    int64  `json:"id"`
	Size  string `json:"size"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

type ProductOutput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       string          `json:"price"`
	Image       *string         `json:"image"`
	Featured    bool            `json:"featured"`
	Variants    []VariantOutput `json:"variants"`
}

// GET /merch/ の入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Featured bool
}

type ProductListOutput struct {
	OK    bool            `json:"ok"`
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Limit == 0 {
		in.Limit = DefaultPageSize
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "Página inválida.")
	}
	if in.Limit < 1 || in.Limit > MaxPageSize {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "Limite inválido.")
	}

	items, total, err := u.products.ListActive(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Featured: in.Featured,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	out := ProductListOutput{
		OK:    true,
		Items: make([]ProductOutput, 0, len(items)),
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}
	for _, p := range items {
		out.Items = append(out.Items, toProductOutput(p))
	}
	return out, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, slug string) (ProductOutput, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}

	p, err := u.products.FindActiveBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, msgInternal)
	}
	return toProductOutput(p), nil
}

type AdminVariantInput struct {
	Size          string
	PriceOverride string // 空なら商品価格
	Stock         int64
}

type AdminCreateProductInput struct {
	Name        string
	Description string
	Price       string
	ImageURL    string
	IsActive    bool
	IsFeatured  bool
	Variants    []AdminVariantInput
}

// AdminCreateProduct は商品をバリアントごと登録する。スラッグは名前から作り、重複なら -2, -3 ... を付ける。
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (ProductOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "Nome obrigatório.")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return ProductOutput{}, err
	}

	p := model.Product{
		Name:        name,
		Description: in.Description,
		Price:       price,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    in.IsActive,
		IsFeatured:  in.IsFeatured,
	}

	seen := map[model.Size]bool{}
	for _, v := range in.Variants {
		size := model.Size(strings.ToUpper(strings.TrimSpace(v.Size)))
		if !size.Valid() {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Tamanho inválido: %s", v.Size))
		}
		if seen[size] {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Tamanho repetido: %s", size))
		}
		seen[size] = true

		if v.Stock < 0 {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "Estoque deve ser >= 0.")
		}

		variant := model.ProductVariant{Size: size, StockQty: v.Stock, IsActive: true}
		if strings.TrimSpace(v.PriceOverride) != "" {
			override, err := parsePrice(v.PriceOverride)
			if err != nil {
				return ProductOutput{}, err
			}
			variant.PriceOverride = decimal.NewNullDecimal(override)
		}
		p.Variants = append(p.Variants, variant)
	}

	slug, err := u.uniqueSlug(ctx, name)
	if err != nil {
		return ProductOutput{}, err
	}
	p.Slug = slug

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	// 在庫0のバリアントも登録直後は返す
	return toProductOutput(created), nil
}

// AdminUpdateInventory はバリアントの在庫数を上書きする。
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, variantID int64, stock int64) error {
	if variantID <= 0 {
		return NewHTTPError(http.StatusNotFound, msgVariantNotFound)
	}
	if stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "Estoque deve ser >= 0.")
	}

	err := u.products.UpdateVariantStock(ctx, variantID, stock)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, msgVariantNotFound)
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, msgInternal)
	}
	return nil
}

func (u *ProductUsecase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if len(base) > 200 {
		base = strings.Trim(base[:200], "-")
	}
	if base == "" {
		base = "product"
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := u.products.SlugExists(ctx, candidate)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify はアクセントを落として [a-z0-9-] にする（"Boné Planeta" -> "bone-planeta"）。
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, NewHTTPError(http.StatusBadRequest, "Preço inválido.")
	}
	return d.Round(2), nil
}

func toProductOutput(p model.Product) ProductOutput {
	o := ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Featured:    p.IsFeatured,
		Variants:    make([]VariantOutput, 0, len(p.Variants)),
	}
	if p.ImageURL != "" {
		img := p.ImageURL
		o.Image = &img
	}

	variants := append([]model.ProductVariant(nil), p.Variants...)
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Size.Rank() < variants[j].Size.Rank()
	})
	for _, v := range variants {
		// FinalPrice は v.Product を見るので商品価格を入れておく
		v.Product.Price = p.Price
		o.Variants = append(o.Variants, VariantOutput{
			ID:    v.ID,
			Size:  string(v.Size),
			Price: v.FinalPrice().StringFixed(2),
			Stock: v.StockQty,
		})
	}
	return o
}
