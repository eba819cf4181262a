package ecommerce

// ShopifyProductsExportQuery is the bulk query exporting every product with its
// metafields and variants. Each JSONL line is one node; children carry __parentId.
const ShopifyProductsExportQuery = `
{
  products {
    edges {
      node {
        id
        title
        vendor
        metafields {
          edges {
            node {
              namespace
              key
              value
            }
          }
        }
        variants {
          edges {
            node {
              id
              sku
              metafield(namespace: "custom", key: "cost_history") {
                value
              }
            }
          }
        }
      }
    }
  }
}
`

const shopifyBulkOperationRunQuery = `
mutation bulkOperationRunQuery($query: String!) {
  bulkOperationRunQuery(query: $query) {
    bulkOperation {
      id
      status
    }
    userErrors {
      field
      message
    }
  }
}
`

const shopifyBulkOperationStatusQuery = `
query bulkOperationStatus($id: ID!) {
  node(id: $id) {
    ... on BulkOperation {
      id
      status
      errorCode
      createdAt
      completedAt
      objectCount
      fileSize
      url
      partialDataUrl
    }
  }
}
`

const shopifyVariantsBySKUQuery = `
query variantsBySku($query: String!) {
  productVariants(first: 3, query: $query) {
    nodes {
      id
      sku
      price
      displayName
      product {
        id
        vendor
      }
      inventoryItem {
        id
        unitCost {
          amount
        }
      }
      metafield(namespace: "custom", key: "cost_history") {
        jsonValue
        compareDigest
      }
    }
  }
}
`

const shopifySetVariantCostMutation = `
mutation inventoryItemUpdate($id: ID!, $input: InventoryItemInput!) {
  inventoryItemUpdate(id: $id, input: $input) {
    inventoryItem {
      id
      unitCost {
        amount
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

const shopifySetVariantPricesMutation = `
mutation setVariantPrice($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    product {
      id
    }
    productVariants {
      id
      displayName
      price
    }
    userErrors {
      field
      message
    }
  }
}
`

const shopifyAdjustQuantitiesMutation = `
mutation adjustVariantsQuantities($input: InventoryAdjustQuantitiesInput!) {
  inventoryAdjustQuantities(input: $input) {
    inventoryAdjustmentGroup {
      createdAt
      reason
      changes {
        name
        delta
        item {
          sku
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

const shopifySetMetafieldsMutation = `
mutation MetafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      namespace
      key
      value
      compareDigest
    }
    userErrors {
      field
      message
      code
    }
  }
}
`

// Mutation field names checked for userErrors
const (
	shopifyFieldBulkOperationRunQuery = "bulkOperationRunQuery"
	shopifyFieldInventoryItemUpdate   = "inventoryItemUpdate"
	shopifyFieldVariantsBulkUpdate    = "productVariantsBulkUpdate"
	shopifyFieldAdjustQuantities      = "inventoryAdjustQuantities"
	shopifyFieldMetafieldsSet         = "metafieldsSet"
)
