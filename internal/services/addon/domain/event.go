package domain

import "strings"

// Bus topics consumed and emitted by the add-on controller. The names match
// the host storefront's shared event vocabulary so collaborating page
// components (cart drawer, count widgets) keep refreshing on the events
// they already listen for.
const (
	// TopicCartUpdate signals any cart mutation.
	TopicCartUpdate = "cart:update"
	// TopicCartUpdated is the post-mutation refresh broadcast.
	TopicCartUpdated = "cart:updated"
	// TopicCartRefresh asks cart surfaces to re-render.
	TopicCartRefresh = "cart:refresh"
	// TopicCartDrawerRefresh asks the cart drawer to re-render.
	TopicCartDrawerRefresh = "cart-drawer:refresh"
	// TopicCartCountUpdated carries a refreshed cart count.
	TopicCartCountUpdated = "cart:count-updated"
	// TopicFormSubmit signals an add-to-cart form submission.
	TopicFormSubmit = "form:submit"
)

// Source tags carried by cart-update notifications.
const (
	// SourceProductForm identifies a primary product-form add.
	SourceProductForm = "product-form"
	// SourceAddonController tags notifications this controller republished,
	// so it never reacts to its own events.
	SourceAddonController = "addon-controller"
)

// cartAddPathFragment matches form actions that target the cart-add endpoint.
const cartAddPathFragment = "/cart/add"

// CartUpdate describes one cart mutation notification.
type CartUpdate struct {
	// EventID is an optional idempotency identifier; notifications carrying
	// the same non-empty EventID are handled at most once.
	EventID string
	// Source tags the component that performed the mutation.
	Source string
	// DidError reports that the mutation itself failed.
	DidError bool
	// ProductID identifies the product that was added, when one was.
	ProductID string
}

// FormSubmission captures one form submission as observed by the storefront
// gateway: the form action plus the attribute maps of every checked add-on
// selector container at submission time.
type FormSubmission struct {
	Action  string
	Checked []map[string]string
}

// TargetsCartAdd reports whether the submission's form action points at the
// cart-add endpoint.
func (s FormSubmission) TargetsCartAdd() bool {
	return strings.Contains(s.Action, cartAddPathFragment)
}

// CountUpdate is the payload of a cart:count-updated event.
type CountUpdate struct {
	Count int
	Cart  any
}
