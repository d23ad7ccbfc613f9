package domain

// KeyPrefix namespaces every lotscout key in the store.
const KeyPrefix = "lotscout:"
