package container

// Factory creates containers from a variant preset
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// Create builds a container of the given variant. A container created with a
// cargo category is full and ready for export; one created without goods is empty.
// Registration is left to whoever takes ownership of the container.
func (f *Factory) Create(variant Variant, code string, goods GoodsCategory) (*Container, error) {
	state := StateEmpty
	if goods.IsCargo() {
		state = StateFullExport
	} else {
		goods = GoodsNone
	}
	return NewContainer(code, variant, goods, state)
}

// CreateFromInput parses operator input and builds the container.
func (f *Factory) CreateFromInput(variantName, letters string, number int, goodsName string) (*Container, error) {
	variant, err := ParseVariant(variantName)
	if err != nil {
		return nil, err
	}
	code, err := BuildCode(letters, number)
	if err != nil {
		return nil, err
	}
	goods, err := ParseGoodsCategory(goodsName)
	if err != nil {
		return nil, err
	}
	return f.Create(variant, code, goods)
}
