package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
)

var (
	ErrUsernameTaken = errors.New("username is already in use")
	ErrEmptyPatch    = errors.New("nothing to update")
)

// ItemInput carries raw admin form values for a new catalog item.
type ItemInput struct {
	Name     string
	Price    string
	Category string
}

// Item validates the input into a catalog item without an id.
func (in ItemInput) Item() (catalogdomain.Item, error) {
	price, err := catalogdomain.ParsePrice(in.Price)
	if err != nil {
		return catalogdomain.Item{}, err
	}
	item, err := catalogdomain.NewItem("", in.Name, price, catalogdomain.Category(in.Category))
	if err != nil {
		return catalogdomain.Item{}, err
	}
	return *item, nil
}

// ItemPatch changes only the fields that are set.
type ItemPatch struct {
	Name     *string
	Price    *string
	Category *string
}

// Apply validates the patch against the current item.
func (p ItemPatch) Apply(item catalogdomain.Item) (catalogdomain.Item, error) {
	if p.Name == nil && p.Price == nil && p.Category == nil {
		return item, ErrEmptyPatch
	}
	if p.Name != nil {
		if err := item.Rename(*p.Name); err != nil {
			return item, err
		}
	}
	if p.Price != nil {
		price, err := catalogdomain.ParsePrice(*p.Price)
		if err != nil {
			return item, err
		}
		if err := item.Reprice(price); err != nil {
			return item, err
		}
	}
	if p.Category != nil {
		if err := item.Categorize(catalogdomain.Category(*p.Category)); err != nil {
			return item, err
		}
	}
	return item, nil
}

// EmployeeInput carries a new employee's credentials.
type EmployeeInput struct {
	Username string
	Password string
}

// Employee validates the input into an employee without an id.
func (in EmployeeInput) Employee() (directorydomain.Employee, error) {
	employee, err := directorydomain.NewEmployee("", in.Username, in.Password)
	if err != nil {
		return directorydomain.Employee{}, err
	}
	return *employee, nil
}

// EmployeePatch changes only the fields that are set.
type EmployeePatch struct {
	Username *string
	Password *string
}

func (p EmployeePatch) Apply(employee directorydomain.Employee) (directorydomain.Employee, error) {
	if p.Username == nil && p.Password == nil {
		return employee, ErrEmptyPatch
	}
	if p.Username != nil {
		if err := employee.SetUsername(*p.Username); err != nil {
			return employee, err
		}
	}
	if p.Password != nil {
		if err := employee.SetPassword(*p.Password); err != nil {
			return employee, err
		}
	}
	return employee, nil
}

// SettingsPatch changes only the fields that are set. Theme keys are merged.
type SettingsPatch struct {
	BusinessName   *string
	TaxRatePercent *string
	Theme          map[string]string
}

// Apply validates the patch against the current settings.
func (p SettingsPatch) Apply(current settingsdomain.Business) (settingsdomain.Business, error) {
	if p.BusinessName == nil && p.TaxRatePercent == nil && len(p.Theme) == 0 {
		return current, ErrEmptyPatch
	}
	next := settingsdomain.Business{
		BusinessName:   current.BusinessName,
		TaxRatePercent: current.TaxRatePercent,
		Theme:          make(map[string]string, len(current.Theme)+len(p.Theme)),
	}
	for k, v := range current.Theme {
		next.Theme[k] = v
	}
	for k, v := range p.Theme {
		next.Theme[k] = v
	}
	if p.BusinessName != nil {
		next.BusinessName = strings.TrimSpace(*p.BusinessName)
	}
	if p.TaxRatePercent != nil {
		rate, err := decimal.NewFromString(strings.TrimSpace(*p.TaxRatePercent))
		if err != nil {
			return current, settingsdomain.ErrInvalidTaxRate
		}
		next.TaxRatePercent = rate
	}
	if err := next.Validate(); err != nil {
		return current, err
	}
	return next, nil
}
