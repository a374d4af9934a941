package cartclient

// Messages はユーザーに見せる文言。既定はポルトガル語（店舗のロケール）。
type Messages struct {
	EmptyCart    string
	VariantLabel string
	RemoveLabel  string
	StatusError  string // %d にHTTPステータス
	LoadFailed   string
	RemoveFailed string
	UpdateFailed string
	AddFailed    string
	AddError     string
}

func DefaultMessages() Messages {
	return Messages{
		EmptyCart:    "O carrinho está vazio.",
		VariantLabel: "Variante",
		RemoveLabel:  "remover",
		StatusError:  "Erro (%d)",
		LoadFailed:   "Erro ao carregar carrinho.",
		RemoveFailed: "Erro ao remover item.",
		UpdateFailed: "Erro ao atualizar quantidade.",
		AddFailed:    "Falha ao adicionar ao carrinho.",
		AddError:     "Erro ao adicionar ao carrinho.",
	}
}
