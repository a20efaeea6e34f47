package store

import "testing"

func TestShoppingCreateAndList(t *testing.T) {
	db := testDB(t)
	h1, u1 := seedHousehold(t, db, "alpha", "alice")
	h2, u2 := seedHousehold(t, db, "beta", "bob")
	items := NewShoppingStore(db)

	item, err := items.Create("milk", "2%", 2, h1.ID, u1.ID)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Quantity != 2 || item.Name != "milk" {
		t.Errorf("unexpected item: %+v", item)
	}

	if _, err := items.Create("bread", "", 1, h2.ID, u2.ID); err != nil {
		t.Fatalf("create item: %v", err)
	}

	list, err := items.ListByHousehold(h1.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(list) != 1 || list[0].Name != "milk" {
		t.Errorf("household 1 list = %+v, want just milk", list)
	}
}

func TestShoppingDelete(t *testing.T) {
	db := testDB(t)
	h, u := seedHousehold(t, db, "alpha", "alice")
	items := NewShoppingStore(db)

	item, err := items.Create("eggs", "", 12, h.ID, u.ID)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if err := items.Delete(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := items.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got != nil {
		t.Errorf("item still present after delete: %+v", got)
	}
}
